package recorder

import "go.uber.org/multierr"

// Multi fans every event out to all recorders and combines their errors.
type Multi []Recorder

func (m Multi) RecordSnapshot(evt *SnapshotEvent) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.RecordSnapshot(evt))
	}
	return err
}

func (m Multi) RecordAnalysis(evt *AnalysisEvent) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.RecordAnalysis(evt))
	}
	return err
}

func (m Multi) Close() error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.Close())
	}
	return err
}
