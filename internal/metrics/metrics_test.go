package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOperation(t *testing.T) {
	before := testutil.ToFloat64(operations.WithLabelValues("pages", "ok"))
	failed := testutil.ToFloat64(operations.WithLabelValues("pages", "error"))

	Operation("pages", nil)
	Operation("pages", errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(operations.WithLabelValues("pages", "ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(operations.WithLabelValues("pages", "error")))
}

func TestNodesDeleted(t *testing.T) {
	before := testutil.ToFloat64(nodesDeleted)
	NodesDeleted(3)
	assert.Equal(t, before+3, testutil.ToFloat64(nodesDeleted))
}

func TestHistogramsCollect(t *testing.T) {
	LayoutPages(12)
	Generation(time.Now(), nil)

	assert.Equal(t, 1, testutil.CollectAndCount(layoutPages))
	assert.Equal(t, 1, testutil.CollectAndCount(generationDuration))
}
