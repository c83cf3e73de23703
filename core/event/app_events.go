package event

// AppInit is published once the host application has finished starting.
type AppInit struct {
	baseEvent
}

func NewAppInit() *AppInit {
	return &AppInit{}
}

func (e *AppInit) EventName() string { return "AppInit" }
func (e *AppInit) Channel() Channel  { return ChannelAppInit }

// AppEvent is a generic application-level notification.
type AppEvent struct {
	baseEvent
	Name    string
	Payload any
}

func NewAppEvent(name string, payload any) *AppEvent {
	return &AppEvent{Name: name, Payload: payload}
}

func (e *AppEvent) EventName() string { return "AppEvent" }
func (e *AppEvent) Channel() Channel  { return ChannelAppEvent }

// AppLog carries a log line produced by a subsystem that does not hold a logger.
type AppLog struct {
	baseEvent
	Level   string
	Message string
}

func NewAppLog(level, message string) *AppLog {
	return &AppLog{Level: level, Message: message}
}

func (e *AppLog) EventName() string { return "AppLog" }
func (e *AppLog) Channel() Channel  { return ChannelAppLog }

// TaskInit is published when a task should be started.
type TaskInit struct {
	baseEvent
	Task    string
	Payload any
}

func NewTaskInit(task string, payload any) *TaskInit {
	return &TaskInit{Task: task, Payload: payload}
}

func (e *TaskInit) EventName() string { return "TaskInit" }
func (e *TaskInit) Channel() Channel  { return ChannelTaskInit }

// ErrorEvent reports a failure that subsystems other than the producer care about.
type ErrorEvent struct {
	baseEvent
	Err     error
	Payload any
}

func NewErrorEvent(err error, payload any) *ErrorEvent {
	return &ErrorEvent{Err: err, Payload: payload}
}

func (e *ErrorEvent) EventName() string { return "ErrorEvent" }
func (e *ErrorEvent) Channel() Channel  { return ChannelError }
