// Package archive keeps a durable record of completed surveys and booking
// attempts outside the short-lived session store.
package archive

import (
	"context"
	"errors"
)

type Recorder interface {
	RecordSurvey(ctx context.Context, rec SurveyRecord) error
	RecordBooking(ctx context.Context, rec BookingRecord) error
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) RecordSurvey(context.Context, SurveyRecord) error   { return nil }
func (NoopRecorder) RecordBooking(context.Context, BookingRecord) error { return nil }

// MultiRecorder fans records out to every recorder and joins their errors.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordSurvey(ctx context.Context, rec SurveyRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordSurvey(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiRecorder) RecordBooking(ctx context.Context, rec BookingRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordBooking(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
