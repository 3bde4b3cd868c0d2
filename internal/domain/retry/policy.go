// Package retry defines the backoff policy and attempt state machine used
// for outbound LLM calls.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// Policy defines a capped exponential backoff strategy.
type Policy struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	MaxJitter    time.Duration `json:"max_jitter"`
}

// DefaultPolicy returns the policy used for chat-completion calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
		MaxJitter:    500 * time.Millisecond,
	}
}

// NoRetryPolicy returns a policy that never retries.
func NoRetryPolicy() Policy {
	return Policy{MaxAttempts: 1}
}

// Delay calculates the backoff before the given attempt is retried:
// min(initial * 2^(attempt-1), max) plus random jitter.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := time.Duration(float64(p.InitialDelay) * math.Pow(2, float64(attempt-1)))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.MaxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(p.MaxJitter)))
	}
	return delay
}

// State is the position of the attempt machine.
type State string

const (
	StateAttempting State = "attempting"
	StateSucceeded  State = "succeeded"
	StateRetrying   State = "retrying"
	StateFailed     State = "failed"
)

// Transition is the machine's reaction to an attempt outcome.
type Transition struct {
	State State
	// Delay is how long to wait before the next attempt. Set only when
	// State is StateRetrying.
	Delay time.Duration
	// Exhausted is true when the failure is terminal because no attempts
	// remain, as opposed to a fatal classification.
	Exhausted bool
}

// Machine tracks attempts against a policy. The zero machine is not usable;
// construct with NewMachine.
type Machine struct {
	policy  Policy
	attempt int
}

// NewMachine creates an attempt machine positioned before the first attempt.
func NewMachine(policy Policy) *Machine {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &Machine{policy: policy, attempt: 1}
}

// Attempt returns the current attempt number, starting at 1.
func (m *Machine) Attempt() int {
	return m.attempt
}

// Observe feeds an attempt outcome into the machine and returns the
// transition to take. A nil error succeeds. A non-retriable error fails
// immediately; a retriable one either schedules a delay or fails once
// attempts are exhausted.
func (m *Machine) Observe(err error, retriable bool) Transition {
	if err == nil {
		return Transition{State: StateSucceeded}
	}
	if !retriable {
		return Transition{State: StateFailed}
	}
	if m.attempt >= m.policy.MaxAttempts {
		return Transition{State: StateFailed, Exhausted: true}
	}

	delay := m.policy.Delay(m.attempt)
	m.attempt++
	return Transition{State: StateRetrying, Delay: delay}
}
