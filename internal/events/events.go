// Package events provides an event system for run and task notifications.
package events

import "time"

// EventType represents the type of event
type EventType string

const (
	// EventRunStart is emitted when a strategy run begins
	EventRunStart EventType = "run_start"
	// EventTaskDone is emitted when a single work item completes
	EventTaskDone EventType = "task_done"
	// EventRunComplete is emitted when a strategy run returns its full result set
	EventRunComplete EventType = "run_complete"
	// EventRunTimeout is emitted when a strategy run exceeds its deadline
	EventRunTimeout EventType = "run_timeout"
	// EventRunFailed is emitted when a strategy run fails for any other reason
	EventRunFailed EventType = "run_failed"
	// EventFaultInjected is emitted when the fault injector fires
	EventFaultInjected EventType = "fault_injected"
)

// Event represents a run or task lifecycle event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Strategy  string    `json:"strategy,omitempty"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	TaskID   int    `json:"task_id,omitempty"`
	Delay    string `json:"delay,omitempty"`
	Count    int    `json:"count,omitempty"`
	WallTime string `json:"wall_time,omitempty"`
	Fault    string `json:"fault,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewRunStartEvent creates a run start event
func NewRunStartEvent(strategy string, count int) Event {
	return Event{
		Type:      EventRunStart,
		Timestamp: time.Now(),
		Strategy:  strategy,
		Data: EventData{
			Count: count,
		},
	}
}

// NewTaskDoneEvent creates a task completion event
func NewTaskDoneEvent(strategy string, taskID int, delay time.Duration) Event {
	return Event{
		Type:      EventTaskDone,
		Timestamp: time.Now(),
		Strategy:  strategy,
		Data: EventData{
			TaskID: taskID,
			Delay:  delay.String(),
		},
	}
}

// NewRunCompleteEvent creates a run completion event
func NewRunCompleteEvent(strategy string, count int, wallTime time.Duration) Event {
	return Event{
		Type:      EventRunComplete,
		Timestamp: time.Now(),
		Strategy:  strategy,
		Data: EventData{
			Count:    count,
			WallTime: wallTime.String(),
		},
	}
}

// NewRunTimeoutEvent creates a run timeout event
func NewRunTimeoutEvent(strategy string, count int) Event {
	return Event{
		Type:      EventRunTimeout,
		Timestamp: time.Now(),
		Strategy:  strategy,
		Data: EventData{
			Count: count,
		},
	}
}

// NewRunFailedEvent creates a run failure event
func NewRunFailedEvent(strategy string, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventRunFailed,
		Timestamp: time.Now(),
		Strategy:  strategy,
		Data: EventData{
			Error: errMsg,
		},
	}
}

// NewFaultInjectedEvent creates a fault injection event
func NewFaultInjectedEvent(taskID int, fault string) Event {
	return Event{
		Type:      EventFaultInjected,
		Timestamp: time.Now(),
		Data: EventData{
			TaskID: taskID,
			Fault:  fault,
		},
	}
}
