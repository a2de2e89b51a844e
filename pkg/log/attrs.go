package log

import "log/slog"

func ExecutionID[T ~string](id T) slog.Attr {
	return slog.String("execution_id", string(id))
}

func TriggerID[T ~string](id T) slog.Attr {
	return slog.String("trigger_id", string(id))
}

func WorkflowID[T ~string](id T) slog.Attr {
	return slog.String("workflow_id", string(id))
}

func StepID[T ~string](id T) slog.Attr {
	return slog.String("step_id", string(id))
}

func EventID[T ~string](id T) slog.Attr {
	return slog.String("event_id", string(id))
}

func State[T ~string](state T) slog.Attr {
	return slog.String("state", string(state))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
