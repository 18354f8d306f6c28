package bungee

import (
	"errors"
	"fmt"
)

// minSampleRate and maxSampleRate bound every sample rate a Stretcher
// can be constructed with.
const (
	minSampleRate = 8000
	maxSampleRate = 192000
)

var (
	// ErrInvalidSampleRate is returned when a sample rate falls outside [8000, 192000].
	ErrInvalidSampleRate = errors.New("bungee: sample rate must be in [8000, 192000]")
	// ErrInvalidChannelCount is returned when a channel count is not positive.
	ErrInvalidChannelCount = errors.New("bungee: channel count must be > 0")
	// ErrInvalidPitch is returned when a request's pitch multiplier is not positive.
	ErrInvalidPitch = errors.New("bungee: pitch must be > 0")
	// ErrInvalidSpeed is returned when a request's speed multiplier is zero.
	ErrInvalidSpeed = errors.New("bungee: speed must be non-zero")
	// ErrChannelDataLength is returned when input/output data does not
	// match the chunk's declared frame count and channel count.
	ErrChannelDataLength = errors.New("bungee: channel data length mismatch")
	// ErrNotFlushed reports that the grain ring is not empty. No
	// function in this package returns it.
	ErrNotFlushed = errors.New("bungee: grain ring is not flushed")
)

func validateSampleRates(rates SampleRates) error {
	if rates.Input < minSampleRate || rates.Input > maxSampleRate ||
		rates.Output < minSampleRate || rates.Output > maxSampleRate {
		return fmt.Errorf("%w: got input=%d output=%d", ErrInvalidSampleRate, rates.Input, rates.Output)
	}
	return nil
}

func validateChannelCount(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidChannelCount, n)
	}
	return nil
}

func validateRequest(r Request) error {
	if r.Pitch <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidPitch, r.Pitch)
	}
	if r.Speed == 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidSpeed, r.Speed)
	}
	return nil
}
