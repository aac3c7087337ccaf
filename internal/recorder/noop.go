package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordEstimate(_ *EstimateRecord) error              { return nil }
func (n *NoopRecorder) RecordProjection(_ *ProjectionRecord) error          { return nil }
func (n *NoopRecorder) RecentProjections(_ int) ([]ProjectionRecord, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                        { return nil }
