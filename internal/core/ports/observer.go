package ports

// PipelineObserver receives stage outcomes for instrumentation.
type PipelineObserver interface {
	ObserveDetection(outcome string)
	ObservePlaylist(outcome string)
}
