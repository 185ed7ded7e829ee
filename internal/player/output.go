package player

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Output is the process-wide audio device every Player writes to.
type Output struct {
	ctx       *oto.Context
	mu        sync.Mutex
	suspended bool
}

var (
	sharedOutput *Output
	outputOnce   sync.Once
	outputErr    error
)

// SharedOutput opens the audio device on first use and returns the same
// Output afterwards.
func SharedOutput() (*Output, error) {
	outputOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   outputSampleRate,
			ChannelCount: outputChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			outputErr = err
			return
		}
		<-ready
		sharedOutput = &Output{ctx: ctx}
	})
	return sharedOutput, outputErr
}

// Suspend stops the device until Resume is called.
func (o *Output) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.suspended {
		return nil
	}
	if err := o.ctx.Suspend(); err != nil {
		return err
	}
	o.suspended = true
	return nil
}

// Resume restarts a suspended device. It is a no-op otherwise.
func (o *Output) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.suspended {
		return nil
	}
	if err := o.ctx.Resume(); err != nil {
		return err
	}
	o.suspended = false
	return nil
}

// Suspended reports whether the device is currently suspended.
func (o *Output) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended
}
