package importer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/frahmantamala/personal-ledger/internal/importer"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// StubImporter records artifacts and fails for names listed in failures.
type StubImporter struct {
	mu       sync.Mutex
	seen     []string
	failures map[string]bool
	block    chan struct{}
}

func (s *StubImporter) Import(ctx context.Context, artifact importer.Artifact) (*importer.ImportResult, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.seen = append(s.seen, artifact.Name())
	fail := s.failures[artifact.Name()]
	s.mu.Unlock()

	if fail {
		return nil, errors.New("import failed")
	}
	if err := artifact.Remove(); err != nil {
		return nil, err
	}
	return &importer.ImportResult{}, nil
}

func (s *StubImporter) Seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

var _ = Describe("Import worker pool", func() {
	It("should run submitted jobs and report the outcome", func() {
		stub := &StubImporter{}
		pool := importer.NewPool(stub, importer.PoolConfig{MaxWorkers: 2, JobQueueSize: 4}, testLogger())
		defer pool.Shutdown()

		done := make(chan error, 1)
		err := pool.Submit(importer.ImportJob{
			Artifact: &MemoryArtifact{name: "a.csv"},
			Done: func(_ *importer.ImportResult, err error) {
				done <- err
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Eventually(done).Should(Receive(BeNil()))
		Expect(stub.Seen()).To(ConsistOf("a.csv"))
	})

	It("should reject jobs once the queue is full", func() {
		stub := &StubImporter{block: make(chan struct{})}
		pool := importer.NewPool(stub, importer.PoolConfig{MaxWorkers: 1, JobQueueSize: 1}, testLogger())
		defer func() {
			close(stub.block)
			pool.Shutdown()
		}()

		var rejected error
		for i := 0; i < 5 && rejected == nil; i++ {
			rejected = pool.Submit(importer.ImportJob{Artifact: &MemoryArtifact{name: "a.csv"}})
		}
		Expect(errors.Is(rejected, importer.ErrQueueFull)).To(BeTrue())
	})

	It("should refuse work after shutdown", func() {
		pool := importer.NewPool(&StubImporter{}, importer.PoolConfig{}, testLogger())
		pool.Shutdown()

		err := pool.Submit(importer.ImportJob{Artifact: &MemoryArtifact{name: "a.csv"}})
		Expect(errors.Is(err, importer.ErrPoolClosed)).To(BeTrue())
	})
})

var _ = Describe("Inbox", func() {
	var (
		dir   string
		stub  *StubImporter
		pool  *importer.Pool
		inbox *importer.Inbox
	)

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stub = &StubImporter{failures: map[string]bool{"bad.csv": true}}
		pool = importer.NewPool(stub, importer.PoolConfig{MaxWorkers: 1, JobQueueSize: 8}, testLogger())
		DeferCleanup(pool.Shutdown)
		inbox = importer.NewInbox(dir, time.Hour, pool, testLogger())
	})

	It("should import supported files and ignore others", func() {
		good := write("good.csv", "title,type,value,category\n")
		write("notes.md", "ignore me")

		queued, err := inbox.Scan()
		Expect(err).NotTo(HaveOccurred())
		Expect(queued).To(Equal(1))

		Eventually(stub.Seen).Should(ConsistOf("good.csv"))
		Eventually(good).ShouldNot(BeAnExistingFile())
	})

	It("should not retry a failed file until it changes", func() {
		bad := write("bad.csv", "title,type,value,category\n")

		_, err := inbox.Scan()
		Expect(err).NotTo(HaveOccurred())
		Eventually(stub.Seen).Should(HaveLen(1))

		Eventually(func() int {
			queued, err := inbox.Scan()
			Expect(err).NotTo(HaveOccurred())
			return queued
		}).Should(Equal(0))
		Consistently(stub.Seen, 100*time.Millisecond).Should(HaveLen(1))

		later := time.Now().Add(time.Minute)
		Expect(os.Chtimes(bad, later, later)).To(Succeed())

		queued, err := inbox.Scan()
		Expect(err).NotTo(HaveOccurred())
		Expect(queued).To(Equal(1))
		Eventually(stub.Seen).Should(HaveLen(2))
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		result := make(chan error, 1)
		go func() { result <- inbox.Run(ctx) }()

		cancel()
		Eventually(result).Should(Receive(BeNil()))
	})
})
