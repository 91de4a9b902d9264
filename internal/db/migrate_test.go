package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	stmts := SplitStatements(`
-- comment
CREATE TABLE a (
    id TEXT
);

CREATE INDEX a_idx ON a (id);
SELECT 1`)

	require.Len(t, stmts, 3)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a ("))
	assert.True(t, strings.HasSuffix(stmts[0], ");"))
	assert.Equal(t, "CREATE INDEX a_idx ON a (id);", stmts[1])
	assert.Equal(t, "SELECT 1", stmts[2])
}

func TestSchemaDeclaresUniqueNaturalKeys(t *testing.T) {
	for _, want := range []string{
		"CONSTRAINT guest_users_contact_key UNIQUE (contact)",
		"CONSTRAINT guest_users_email_key UNIQUE (email)",
		"CONSTRAINT guest_users_referral_key UNIQUE (referral)",
		"LIKE guest_users INCLUDING ALL",
		"UNIQUE (plan_name, plan_duration)",
		"UNIQUE (user_id, property_id)",
		"UNIQUE (property_name)",
		"CONSTRAINT marketing_contents_hash_key UNIQUE (projectpartner_id, content_hash)",
	} {
		assert.Contains(t, Schema, want)
	}

	var adminHash string
	for _, stmt := range SplitStatements(Schema) {
		if strings.Contains(stmt, "marketing_contents_admin_hash_key") {
			adminHash = stmt
		}
	}
	require.NotEmpty(t, adminHash, "admin uploads need their own hash key")
	assert.True(t, strings.HasPrefix(adminHash, "CREATE UNIQUE INDEX"), adminHash)
	assert.Contains(t, adminHash, "(content_hash) WHERE projectpartner_id IS NULL")

	for _, stmt := range SplitStatements(Schema) {
		assert.True(t, strings.HasSuffix(stmt, ";"), stmt)
	}
}
