package output

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// fakeS3 is a tiny S3 stand-in that accepts path-style PutObject requests.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	status  int
}

type fakeObject struct {
	body        []byte
	contentType string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		return &http.Response{StatusCode: f.status, Body: io.NopCloser(strings.NewReader("<Error><Code>AccessDenied</Code></Error>")), Header: http.Header{}}, nil
	}
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}

	body, _ := io.ReadAll(req.Body)
	if dec, ok := decodeChunked(body); ok {
		body = dec
	}
	f.objects[strings.TrimPrefix(req.URL.Path, "/")] = fakeObject{body: body, contentType: req.Header.Get("Content-Type")}
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {`"etag"`}}}, nil
}

// decodeChunked unwraps a single-chunk aws-chunked payload.
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	head := strings.SplitN(parts[0], ";", 2)[0]
	size, err := strconv.ParseInt(head, 16, 64)
	if err != nil || int64(len(parts[1])) != size || !strings.HasPrefix(parts[2], "0") {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newTestS3(t *testing.T, fake *fakeS3, prefix string) *S3 {
	t.Helper()
	sink, err := NewS3(context.Background(), S3Options{
		Bucket:     "results",
		Region:     "eu-west-1",
		Endpoint:   "https://s3.test.local",
		Prefix:     prefix,
		PathStyle:  true,
		HTTPClient: &http.Client{Transport: fake},
		LoadOptions: []func(*awsconfig.LoadOptions) error{
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
			awsconfig.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
		},
	})
	if err != nil {
		t.Fatalf("NewS3() error = %v", err)
	}
	return sink
}

func TestS3_Put(t *testing.T) {
	fake := &fakeS3{objects: make(map[string]fakeObject)}
	sink := newTestS3(t, fake, "sweeps/run1")

	data := []byte("i,rho\n1,0.5\n")
	if err := sink.Put(context.Background(), "case_a__laneA__param_alpha_0.30.csv", data); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	obj, ok := fake.objects["results/sweeps/run1/case_a__laneA__param_alpha_0.30.csv"]
	if !ok {
		t.Fatalf("object not stored, have %v", fake.objects)
	}
	if !bytes.Equal(obj.body, data) {
		t.Errorf("body = %q, want %q", obj.body, data)
	}
	if obj.contentType != ContentType {
		t.Errorf("content type = %q, want %q", obj.contentType, ContentType)
	}
}

func TestS3_ObjectKey(t *testing.T) {
	fake := &fakeS3{objects: make(map[string]fakeObject)}

	if got := newTestS3(t, fake, "").ObjectKey("t.csv"); got != "t.csv" {
		t.Errorf("ObjectKey() without prefix = %q", got)
	}
	if got := newTestS3(t, fake, "p/").ObjectKey("t.csv"); got != "p/t.csv" {
		t.Errorf("ObjectKey() with prefix = %q", got)
	}
}

func TestS3_PutError(t *testing.T) {
	fake := &fakeS3{objects: make(map[string]fakeObject), status: http.StatusForbidden}
	sink := newTestS3(t, fake, "")

	err := sink.Put(context.Background(), "t.csv", []byte("x"))
	if err == nil {
		t.Fatal("expected error from forbidden bucket")
	}
	if !strings.Contains(err.Error(), "s3://results/t.csv") {
		t.Errorf("error = %q, want object location", err)
	}
}

func TestS3_RequiresBucket(t *testing.T) {
	if _, err := NewS3(context.Background(), S3Options{}); err == nil {
		t.Error("expected error without bucket")
	}
}
