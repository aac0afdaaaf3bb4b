package audit

const (
	advanceOperationNameConstant = "advance"
	reopenOperationNameConstant  = "reopen"
	statusLabelInProgress        = "In progress"
	statusLabelReadyReview       = "Ready for Review"
	statusLabelComplete          = "Complete"
)

// Advance moves the record one step through the workflow:
// IN_PROGRESS to READY_REVIEW, READY_REVIEW to COMPLETE when no actions are open,
// and COMPLETE back to IN_PROGRESS. A blocked completion returns
// *CompletionBlockedError and leaves the status unchanged.
func (engine *Engine) Advance(record *Record) error {
	switch record.Status {
	case StatusReadyReview:
		openActions := OpenActionCount(*record)
		if openActions > 0 {
			return &CompletionBlockedError{OpenActions: openActions}
		}
		record.Status = StatusComplete
	case StatusComplete:
		record.Status = StatusInProgress
	case StatusInProgress, StatusDraft:
		record.Status = StatusReadyReview
	default:
		return &TransitionError{Operation: advanceOperationNameConstant, From: record.Status}
	}
	engine.touch(record)
	return nil
}

// Reopen returns a COMPLETE record to IN_PROGRESS.
func (engine *Engine) Reopen(record *Record) error {
	if record.Status != StatusComplete {
		return &TransitionError{Operation: reopenOperationNameConstant, From: record.Status}
	}
	record.Status = StatusInProgress
	engine.touch(record)
	return nil
}

// CanComplete reports whether Advance would move a READY_REVIEW record to COMPLETE.
func CanComplete(record Record) bool {
	return record.Status == StatusReadyReview && OpenActionCount(record) == 0
}

// StatusLabel returns the human-readable name of a status.
func StatusLabel(status Status) string {
	switch status {
	case StatusComplete:
		return statusLabelComplete
	case StatusReadyReview:
		return statusLabelReadyReview
	default:
		return statusLabelInProgress
	}
}

// applyCompletionGate demotes a COMPLETE record with open actions to READY_REVIEW.
// It reports whether the status changed.
func applyCompletionGate(record *Record) bool {
	if record.Status != StatusComplete {
		return false
	}
	if OpenActionCount(*record) == 0 {
		return false
	}
	record.Status = StatusReadyReview
	return true
}
