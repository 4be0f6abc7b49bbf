package granule

import "sync"

// task fans fn out over data across workersCount goroutines and waits.
// Only used for the per-particle passes (snapshot, integration, momentum
// reconciliation) where entries are independent; the collision and
// constraint passes stay sequential.
func task[T any](workersCount int, data []T, fn func(data T)) {
	if workersCount <= 1 {
		for _, d := range data {
			fn(d)
		}
		return
	}

	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(workerID*chunkSize, min((workerID+1)*chunkSize, dataSize))
	}
	wg.Wait()
}
