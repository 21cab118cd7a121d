package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("VIDEOSTREAM_TEST_MODE") == "" {
			_ = os.Setenv("VIDEOSTREAM_TEST_MODE", "1")
		}
	})
}
