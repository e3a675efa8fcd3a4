package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelBuilder(t *testing.T) {
	t.Parallel()

	got := NewLabelBuilder().
		WithCluster("demo").
		WithRole("worker").
		WithBackend("hetzner").
		Merge(map[string]string{"team": "infra"}).
		Build()

	assert.Equal(t, map[string]string{
		KeyManagedBy: ManagedByCloudweave,
		KeyCluster:   "demo",
		KeyRole:      "worker",
		KeyBackend:   "hetzner",
		"team":       "infra",
	}, got)
}

func TestLabelBuilder_SkipsEmptyValues(t *testing.T) {
	t.Parallel()

	got := NewLabelBuilder().WithCluster("").WithRole("").WithBackend("").Build()
	assert.Equal(t, map[string]string{KeyManagedBy: ManagedByCloudweave}, got)
}

func TestLabelBuilder_BuildReturnsCopy(t *testing.T) {
	t.Parallel()

	lb := NewLabelBuilder().WithCluster("demo")
	first := lb.Build()
	first[KeyCluster] = "mutated"

	assert.Equal(t, "demo", lb.Build()[KeyCluster])
}

func TestSelector(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a=1,b=2", Selector(map[string]string{"b": "2", "a": "1"}))
	assert.Equal(t, "", Selector(nil))
	assert.Equal(t, "cloudweave.io/cluster=demo", SelectorForCluster("demo"))
}
