package fractal

// UpdaterOption is a functional option for configuring an Updater.
type UpdaterOption func(*Updater)

// WithUpdaterBatchSize sets the minimum number of parts handled by one worker task.
// Values < 1 are ignored and the default of ChildCount is kept.
//
// Parameters:
//   - n: the minimum batch size
//
// Returns:
//   - UpdaterOption: option function to apply
func WithUpdaterBatchSize(n int) UpdaterOption {
	return func(u *Updater) {
		if n >= 1 {
			u.batchSize = n
		}
	}
}
