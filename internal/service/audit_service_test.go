package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAuditLogsFiltersByActionAndEntity(t *testing.T) {
	repo := &fakeAuditRepo{}
	actor := uuid.New()
	materialID := uuid.New().String()
	require.NoError(t, repo.Log(context.Background(), &model.AuditLog{
		UserID: &actor, Action: model.ActionCreateMaterial, EntityID: materialID, EntityName: "steel",
	}))
	require.NoError(t, repo.Log(context.Background(), &model.AuditLog{
		UserID: &actor, Action: model.ActionDeleteMaterial, EntityID: materialID, EntityName: "steel",
	}))
	require.NoError(t, repo.Log(context.Background(), &model.AuditLog{
		UserID: &actor, Action: model.ActionCreateOrder, EntityID: uuid.New().String(), EntityName: "ORD-001",
	}))

	svc := NewAuditService(repo)

	all, total, err := svc.GetAuditLogs(context.Background(), 1, 20, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	byAction, total, err := svc.GetAuditLogs(context.Background(), 1, 20, model.ActionCreateMaterial, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byAction, 1)
	assert.Equal(t, model.ActionCreateMaterial, byAction[0].Action)

	byEntity, total, err := svc.GetAuditLogs(context.Background(), 1, 20, "", materialID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, entry := range byEntity {
		assert.Equal(t, materialID, entry.EntityID)
	}
}

func TestGetAuditLogsLabelsSystemEntries(t *testing.T) {
	repo := &fakeAuditRepo{}
	require.NoError(t, repo.Log(context.Background(), &model.AuditLog{
		Action: model.ActionCreateUser, EntityID: uuid.New().String(), EntityName: "admin@fabrika.local",
	}))

	svc := NewAuditService(repo)
	logs, _, err := svc.GetAuditLogs(context.Background(), 1, 20, "", "")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "system", logs[0].UserEmail)
	assert.Empty(t, logs[0].UserID)
}
