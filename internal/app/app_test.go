package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petuhovskiy/urn-lights/internal/models"
)

type plainSaver struct {
	saves int
}

func (s *plainSaver) Save(*models.Draw) error {
	s.saves++
	return nil
}

type bufferedSaver struct {
	plainSaver
	closed bool
}

func (s *bufferedSaver) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

func Test_Close_flushesBufferedSaver(t *testing.T) {
	s := &bufferedSaver{}
	a := &App{Saver: s}

	assert.NoError(t, a.Close(context.Background()))
	assert.True(t, s.closed)
}

func Test_Close_plainSaverIsNoop(t *testing.T) {
	a := &App{Saver: &plainSaver{}}

	assert.NoError(t, a.Close(context.Background()))
}
