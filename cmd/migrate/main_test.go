package main

import (
	"testing"

	pkgconfig "golang-dex-token-analyzer/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestGetDSN(t *testing.T) {
	dsn := getDSN(pkgconfig.Database{
		Host:     "db",
		Port:     5432,
		User:     "dex",
		Password: "p@ss/word",
		DBName:   "dex_tokens",
	})
	assert.Equal(t, "postgres://dex:p%40ss%2Fword@db:5432/dex_tokens?sslmode=disable", dsn)
}
