package audit

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	e := NewEvent(KindSecurityAnswerMismatch, "bob", "a1", "i1")

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, KindSecurityAnswerMismatch, e.Kind)
	assert.Equal(t, "bob", e.UserName)
	assert.False(t, e.Timestamp.Before(before))
	assert.NotEqual(t, e.ID, NewEvent(KindSecurityAnswerMismatch, "bob", "", "").ID)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logging.NewJSONLogger(&buf, "info"))

	require.NoError(t, sink.Record(context.Background(), NewEvent(KindSecurityAnswerMismatch, "bob", "a1", "i1")))
	require.NoError(t, sink.Close())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit event", line["msg"])
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "audit", line["module"])
	assert.Equal(t, "SecurityAnswerMismatch", line["kind"])
	assert.Equal(t, "bob", line["username"])
}

func TestFileSink_AppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "audit.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, sink.Record(context.Background(), NewEvent(KindSecurityAnswerMismatch, "bob", "", "")))
		}()
	}
	wg.Wait()
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		assert.Equal(t, "bob", e.UserName)
		n++
	}
	assert.Equal(t, 20, n)

	assert.ErrorIs(t, sink.Record(context.Background(), Event{}), os.ErrClosed)
}

func TestNewFileSink_RequiresPath(t *testing.T) {
	_, err := NewFileSink("")
	assert.Error(t, err)
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink_Record(t *testing.T) {
	fake := &fakePutter{}
	sink := newS3Sink(fake, "audit-bucket")

	e := Event{ID: "ev-1", Kind: KindSecurityAnswerMismatch, UserName: "bob", Timestamp: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)}
	require.NoError(t, sink.Record(context.Background(), e))

	assert.Equal(t, "audit-bucket", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "audit/2025/02/03/ev-1.json", aws.ToString(fake.in.Key))
	assert.Equal(t, "application/json", aws.ToString(fake.in.ContentType))

	var got Event
	require.NoError(t, json.Unmarshal(fake.body, &got))
	assert.Equal(t, e, got)
	assert.NoError(t, sink.Close())
}

func TestS3Sink_RecordError(t *testing.T) {
	sink := newS3Sink(&fakePutter{err: errors.New("denied")}, "b")
	err := sink.Record(context.Background(), NewEvent(KindSecurityAnswerMismatch, "bob", "", ""))
	assert.ErrorContains(t, err, "denied")
}

func TestNewSink(t *testing.T) {
	ctx := context.Background()
	logger := logging.Nop{}

	s, err := NewSink(ctx, &config.Config{AuditType: "log"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &LogSink{}, s)

	s, err = NewSink(ctx, &config.Config{AuditType: "none"}, logger)
	require.NoError(t, err)
	assert.IsType(t, NoOp{}, s)
	assert.NoError(t, s.Record(ctx, Event{}))

	s, err = NewSink(ctx, &config.Config{AuditType: "file", AuditFilePath: filepath.Join(t.TempDir(), "a.jsonl")}, logger)
	require.NoError(t, err)
	assert.IsType(t, &FileSink{}, s)
	require.NoError(t, s.Close())

	s, err = NewSink(ctx, &config.Config{AuditType: "s3", S3Bucket: "b", S3Region: "us-east-1", S3BaseEndpoint: "http://127.0.0.1:9000"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &S3Sink{}, s)

	_, err = NewSink(ctx, &config.Config{AuditType: "kafka"}, logger)
	assert.True(t, strings.Contains(err.Error(), "unknown audit type"))
}
