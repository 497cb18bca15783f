package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	. "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/apps/api/echo"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/storage/database/inmem"
	testutil "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/tests"
)

type fakeConvertService struct {
	mu  sync.Mutex
	res present.Result
	err error
}

func (s *fakeConvertService) Convert(_ context.Context, _, _ string, _ present.SynthesisOptions) (present.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res, s.err
}

type testApp struct {
	server Server
	conf   *core.Config
	repo   *inmem.JobRepository
	worker *present.Worker
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := testutil.NewConfig()
	conf.Debug = false // exercise production error rendering
	conf.Present.UploadDir = t.TempDir()

	repo := inmem.NewJobRepository()
	mailSvc := &testutil.FakeEmailService{}
	logger := testutil.NewLogger()
	worker := present.NewWorker(&fakeConvertService{}, repo, mailSvc, logger, conf)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Jobs:       repo,
		Worker:     worker,
		Validate:   validate,
		Translator: translator,
	})
	return &testApp{server: server, conf: conf, repo: repo, worker: worker}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

// newUploadRequest builds a multipart deck upload with optional form fields.
func newUploadRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := w.CreateFormFile("deck", filename)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err = io.Copy(fw, bytes.NewReader(content)); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("writing form field %s: %v", k, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(tt.wantData)),
			B:        difflib.SplitLines(rec.Body.String()),
			FromFile: "want",
			ToFile:   "got",
			Context:  2,
		})
		t.Errorf("failed! data mismatch:\n%s", diff)
	}
}
