package transaction

import (
	"sync"
	"time"

	"github.com/frahmantamala/smartexpense/internal/core/month"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("admissionLocks", func() {
	var october month.Month

	BeforeEach(func() {
		october, _ = month.Parse("2025-10")
	})

	entries := func(a *admissionLocks) int {
		a.mu.Lock()
		defer a.mu.Unlock()
		return len(a.locks)
	}

	It("should drop an entry once it is released", func() {
		a := newAdmissionLocks()
		unlock := a.lock(1, october)
		Expect(entries(a)).To(Equal(1))
		unlock()
		Expect(entries(a)).To(Equal(0))
	})

	It("should keep the entry while another caller waits", func() {
		a := newAdmissionLocks()
		unlock := a.lock(1, october)

		acquired := make(chan func())
		go func() { acquired <- a.lock(1, october) }()
		Eventually(func() int {
			a.mu.Lock()
			defer a.mu.Unlock()
			return a.locks[lockKey{accountID: 1, month: october}].refs
		}).Should(Equal(2))

		unlock()
		var second func()
		Eventually(acquired).Should(Receive(&second))
		Expect(entries(a)).To(Equal(1))
		second()
		Expect(entries(a)).To(Equal(0))
	})

	It("should serialise holders of the same key only", func() {
		a := newAdmissionLocks()
		var (
			mu      sync.Mutex
			active  int
			maxSeen int
			wg      sync.WaitGroup
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := a.lock(1, october)
				defer unlock()
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
			}()
		}

		other := a.lock(2, october)
		other()
		wg.Wait()
		Expect(maxSeen).To(Equal(1))
		Expect(entries(a)).To(Equal(0))
	})

	It("should be a no-op without serialisation", func() {
		var a *admissionLocks
		unlock := a.lock(1, october)
		unlock()
	})
})
