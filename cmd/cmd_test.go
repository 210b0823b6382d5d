package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/personal-ledger/internal"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

func writeConfig(dir, body string) {
	Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600)).To(Succeed())
}

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should fill unset keys with defaults", func() {
		writeConfig(dir, "database:\n  driver: sqlite\n  source: ledger.db\n")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Driver).To(Equal(internal.DriverSQLite))
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Server.RequestTimeout).To(Equal(10 * time.Second))
		Expect(cfg.Import.PollInterval).To(Equal(10 * time.Second))
		Expect(cfg.Events.Exchange).To(Equal("ledger.events"))
	})

	It("should let ENV_ variables override the file", func() {
		writeConfig(dir, "database:\n  driver: sqlite\n  source: ledger.db\n")
		GinkgoT().Setenv("ENV_DATABASE_SOURCE", "other.db")
		GinkgoT().Setenv("ENV_HTTP_SERVER_PORT", "9090")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Source).To(Equal("other.db"))
		Expect(cfg.Server.Port).To(Equal(9090))
	})

	It("should reject an invalid configuration", func() {
		writeConfig(dir, "database:\n  driver: mysql\n  source: x\n")

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("unsupported driver")))
	})

	It("should require owner settings when security is enabled", func() {
		writeConfig(dir, "database:\n  driver: sqlite\n  source: ledger.db\nsecurity:\n  enabled: true\n")

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("owner_username is required")))
	})
})

var _ = Describe("import command", func() {
	It("should import a CSV file into the configured ledger", func() {
		dir := GinkgoT().TempDir()
		writeConfig(dir, "database:\n  driver: sqlite\n  source: "+filepath.Join(dir, "ledger.db")+"\n"+
			"observability:\n  logging:\n    level: error\n    format: text\n")

		csvPath := filepath.Join(dir, "import.csv")
		Expect(os.WriteFile(csvPath, []byte("title,type,value,category\n"+
			"Freelance,income,500,Work\n"+
			"Lunch,outcome,12.5,Food\n"+
			"Broken,transfer,1,Food\n"), 0o600)).To(Succeed())

		out := &bytes.Buffer{}
		rootCmd.SetOut(out)
		rootCmd.SetArgs([]string{"--config-dir", dir, "import", csvPath})
		DeferCleanup(func() {
			rootCmd.SetOut(nil)
			rootCmd.SetArgs(nil)
		})

		Expect(rootCmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Imported 2 transactions, skipped 1 rows, created 2 categories"))
		Expect(out.String()).To(ContainSubstring("Freelance"))
		Expect(csvPath).NotTo(BeAnExistingFile())
	})
})

var _ = Describe("hash-password command", func() {
	It("should print a bcrypt hash", func() {
		out := &bytes.Buffer{}
		rootCmd.SetOut(out)
		rootCmd.SetArgs([]string{"hash-password", "--cost", "4", "s3cret"})
		DeferCleanup(func() {
			rootCmd.SetOut(nil)
			rootCmd.SetArgs(nil)
		})

		Expect(rootCmd.Execute()).To(Succeed())
		Expect(out.String()).To(HavePrefix("$2a$04$"))
	})
})
