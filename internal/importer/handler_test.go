package importer_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/internal/importer"
	"github.com/frahmantamala/personal-ledger/internal/storage"
	"github.com/frahmantamala/personal-ledger/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Import Handler", func() {
	var (
		uploadDir string
		handler   *importer.Handler
	)

	upload := func(field, filename, content string) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile(field, filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte(content))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/transactions/import", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		handler.ImportTransactions(w, req)
		return w
	}

	BeforeEach(func() {
		db := openLedger()
		uploadDir = GinkgoT().TempDir()
		pipeline := importer.NewPipeline(storage.NewUnitOfWork(db), nil, testLogger())
		handler = importer.NewHandler(&transport.BaseHandler{Logger: testLogger()}, pipeline, internal.UploadConfig{
			Directory:    uploadDir,
			MaxSizeBytes: 1 << 20,
		})
	})

	It("should import an uploaded csv and clean up the stored file", func() {
		w := upload("file", "statement.csv", "title,type,value,category\nFreelance,income,4000,Work\nLunch,outcome,50,Food\n")
		Expect(w.Code).To(Equal(http.StatusCreated))

		var result importer.ImportResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.Transactions).To(HaveLen(2))
		Expect(result.CategoriesCreated).To(Equal(2))

		entries, err := os.ReadDir(uploadDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("should answer 400 when no file is sent", func() {
		w := upload("other", "statement.csv", "x")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 400 for an unsupported extension", func() {
		w := upload("file", "statement.pdf", "x")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
