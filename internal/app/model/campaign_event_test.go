package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestCampaignEvent_BelongsToUniversalClient(t *testing.T) {
	s, err := schema.Parse(&CampaignEvent{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	rel, ok := s.Relationships.Relations["UniversalClient"]
	require.True(t, ok)
	assert.Equal(t, schema.BelongsTo, rel.Type)
	assert.Equal(t, "universal_client", rel.FieldSchema.Table)

	require.Len(t, rel.References, 1)
	assert.Equal(t, "universal_client_id", rel.References[0].ForeignKey.DBName)
	assert.Equal(t, "universal_client_id", rel.References[0].PrimaryKey.DBName)

	constraint := rel.ParseConstraint()
	require.NotNil(t, constraint)
	assert.Equal(t, "RESTRICT", constraint.OnDelete)
}

func TestCampaignEvent_HasManyAttributes(t *testing.T) {
	s, err := schema.Parse(&CampaignEvent{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	rel, ok := s.Relationships.Relations["Attributes"]
	require.True(t, ok)
	assert.Equal(t, schema.HasMany, rel.Type)
	require.Len(t, rel.References, 1)
	assert.Equal(t, "campaign_event_id", rel.References[0].ForeignKey.DBName)
}
