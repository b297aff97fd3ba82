package llm

import (
	"golang.org/x/sync/semaphore"
)

var (
	TextWeight = int64(5)
	TextSem    = semaphore.NewWeighted(TextWeight)
)

func initSemaphore(weight int64) {
	if weight <= 0 {
		return
	}
	TextWeight = weight
	TextSem = semaphore.NewWeighted(weight)
}
