package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynchronizedConcurrentEnqueueDequeue(t *testing.T) {
	var s Synchronized[item, *item]
	const producers = 20
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				s.Enqueue(&item{val: p*perProducer + i})
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, s.Len())

	seen := 0
	for {
		_, ok := s.Dequeue()
		if !ok {
			break
		}
		seen++
	}
	assert.Equal(t, producers*perProducer, seen)
	assert.True(t, s.IsEmpty())
}
