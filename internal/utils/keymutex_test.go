package utils_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chlachla/chlachla-backend/internal/utils"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	km := utils.NewKeyedMutex()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("ride-1")
			defer km.Unlock("ride-1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedMutex_IndependentKeysDoNotBlock(t *testing.T) {
	km := utils.NewKeyedMutex()

	km.Lock("ride-1")
	done := make(chan struct{})
	go func() {
		km.Lock("ride-2")
		km.Unlock("ride-2")
		close(done)
	}()
	<-done // would deadlock if keys shared a lock
	km.Unlock("ride-1")
}

func TestKeyedMutex_UnlockUnlockedPanics(t *testing.T) {
	km := utils.NewKeyedMutex()
	assert.Panics(t, func() { km.Unlock("never-locked") })
}
