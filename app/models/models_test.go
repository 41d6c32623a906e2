package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/pkg/auth"
)

func TestUserJSONOmitsPassword(t *testing.T) {
	u := models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Acme",
		Email:    "acme@x.com",
		Password: "$2a$10$hash",
		Role:     auth.RoleWholesaler,
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotContains(t, out, "password")
	assert.NotContains(t, string(raw), "$2a$10$hash")
	assert.Equal(t, u.ID.Hex(), out["_id"])
}

func TestUserIdentity(t *testing.T) {
	u := models.User{ID: primitive.NewObjectID(), Role: auth.RoleRetailer}
	id := u.Identity()
	assert.Equal(t, u.ID.Hex(), id.UserID)
	assert.Equal(t, auth.RoleRetailer, id.Role)
}

func TestOrderDefaults(t *testing.T) {
	o := models.Order{ProductName: "Widget"}
	o.ApplyDefaults()
	assert.Equal(t, models.PaymentPending, o.PaymentStatus)
	assert.Equal(t, models.StatusProcessing, o.Status)

	paid := models.Order{PaymentStatus: models.PaymentPaid, Status: models.StatusShipped}
	paid.ApplyDefaults()
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, models.StatusShipped, paid.Status)
}
