package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-crm-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "derived", cfg.Billing.PaidStatusPolicy)
	assert.Equal(t, 30, cfg.Billing.PaymentTermDays)
	assert.True(t, cfg.Billing.DefaultTaxRate.IsZero())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_PoliticaInvalida(t *testing.T) {
	t.Setenv("BILLING_PAID_STATUS_POLICY", "sometimes")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_TasaYMatriz(t *testing.T) {
	t.Setenv("BILLING_DEFAULT_TAX_RATE", "19")
	t.Setenv("PERMISSIONS_EDIT", "sales=quotation,purchaseOrder; operations=usageEntry")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "19", cfg.Billing.DefaultTaxRate.String())
	assert.Equal(t, []string{"quotation", "purchaseOrder"}, cfg.Permissions.Edit["sales"])
	assert.Equal(t, []string{"usageEntry"}, cfg.Permissions.Edit["operations"])
	assert.Nil(t, cfg.Permissions.Delete)
}

func TestParseMatrix_SinIgual(t *testing.T) {
	_, err := config.ParseMatrix("admin")
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "x", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/x?sslmode=disable", c.ConnectionString())
}
