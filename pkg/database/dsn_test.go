package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDSN(t *testing.T) {
	cases := map[string]string{
		"":                                   "",
		"  'host=db   user=pos dbname=shop' ": "host=db user=pos dbname=shop sslmode=disable",
		"host=db user=pos sslmode=require":   "host=db user=pos sslmode=require",
		"postgres://u:p@db:5432/shop":        "postgres://u:p@db:5432/shop",
		"not a dsn":                          "not a dsn",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDSN(in), "input %q", in)
	}
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db user=pos password=secret dbname=shop port=5433")
	assert.Equal(t, "postgres://pos:secret@db:5433/shop?sslmode=disable", got)

	// missing dbname stays as-is
	assert.Equal(t, "host=db user=pos sslmode=disable", ToURLDSN("host=db user=pos"))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "host=db password=*** dbname=shop", MaskDSN("host=db password=secret dbname=shop"))
	assert.Equal(t, "postgres://pos:***@db/shop", MaskDSN("postgres://pos:secret@db/shop"))
	assert.Equal(t, "postgres://db/shop", MaskDSN("postgres://db/shop"))
}
