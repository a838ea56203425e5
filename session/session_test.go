package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/credential"
	"github.com/DachengChen/paiData/dataset"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeProtocol records requests and replays scripted replies in order.
type fakeProtocol struct {
	mu      sync.Mutex
	replies []reply
	calls   []ai.CompletionRequest
	creds   []string
}

type reply struct {
	text string
	err  error
}

func (f *fakeProtocol) Name() string { return "fake" }

func (f *fakeProtocol) Send(ctx context.Context, cred credential.Credential, req ai.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	f.creds = append(f.creds, cred.Secret())
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.text, r.err
}

func revenue(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("revenue.csv", []string{"Name", "Revenue"}, [][]string{
		{"Alice", "1000"},
		{"Bob", "234"},
	})
	require.NoError(t, err)
	return ds
}

func testConfig() Config {
	return Config{
		Model:       "gpt-4",
		Temperature: 0.5,
		MaxTokens:   200,
		Policy:      dataset.Full(),
		Template:    ai.DefaultTemplate(),
	}
}

func supplied(t *testing.T, secret string) *credential.Resolver {
	t.Helper()
	r := credential.NewResolver(nil)
	require.NoError(t, r.Supply(secret))
	return r
}

func TestAsk_ReturnsAnswerVerbatim(t *testing.T) {
	fake := &fakeProtocol{replies: []reply{{text: "1,234"}}}
	s, err := New(testConfig(), revenue(t), fake, supplied(t, "sk-a"), nil)
	require.NoError(t, err)

	out := s.Ask(context.Background(), "What is the total revenue?")

	assert.False(t, out.Skipped)
	assert.Equal(t, "1,234", out.Text())
	require.Len(t, fake.calls, 1)

	req := fake.calls[0]
	assert.Equal(t, "What is the total revenue?", req.Question)
	assert.Equal(t, "gpt-4", req.Model)
	assert.Equal(t, 0.5, req.Temperature)
	assert.Equal(t, 200, req.MaxTokens)
	assert.Contains(t, req.Conversation.User.Content, "Alice")
	assert.True(t, strings.HasSuffix(req.Conversation.User.Content, "Question: What is the total revenue?"))
}

func TestAsk_RateLimitLeavesSessionUsable(t *testing.T) {
	fake := &fakeProtocol{replies: []reply{
		{err: &ai.StatusError{Protocol: "fake", Code: 429, Message: "Rate limit reached"}},
		{text: "1,234"},
	}}
	s, err := New(testConfig(), revenue(t), fake, supplied(t, "sk-a"), nil)
	require.NoError(t, err)

	first := s.Ask(context.Background(), "What is the total revenue?")
	f, failed := first.Result.Failure()
	require.True(t, failed)
	assert.Equal(t, ai.ServiceError, f.Kind)
	assert.Contains(t, first.Text(), "429")

	second := s.Ask(context.Background(), "What is the total revenue?")
	assert.Equal(t, "1,234", second.Text())
	assert.Len(t, fake.calls, 2, "one request per question, no retries")
}

func TestAsk_EmptyQuestionIsSkipped(t *testing.T) {
	fake := &fakeProtocol{}
	s, err := New(testConfig(), revenue(t), fake, supplied(t, "sk-a"), nil)
	require.NoError(t, err)

	for _, q := range []string{"", "   ", "\n\t"} {
		out := s.Ask(context.Background(), q)
		assert.True(t, out.Skipped)
		assert.Empty(t, out.Text())
	}
	assert.Empty(t, fake.calls)
}

func TestAsk_Timeout(t *testing.T) {
	block := &blockingProtocol{}
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	s, err := New(cfg, revenue(t), block, supplied(t, "sk-a"), nil)
	require.NoError(t, err)

	out := s.Ask(context.Background(), "anything?")
	f, failed := out.Result.Failure()
	require.True(t, failed)
	assert.Equal(t, ai.Failure{Kind: ai.NetworkFailure, Detail: "timeout"}, f)
}

type blockingProtocol struct{}

func (blockingProtocol) Name() string { return "blocking" }

func (blockingProtocol) Send(ctx context.Context, _ credential.Credential, _ ai.CompletionRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestNew_MissingCredentialMakesNoRequest(t *testing.T) {
	const envVar = "PAIDATA_TEST_SESSION_KEY"
	t.Setenv(envVar, "")
	r := credential.NewEnvResolver(envVar)

	// The user submits an empty value at the prompt.
	assert.ErrorIs(t, r.Supply(""), credential.ErrMissing)

	fake := &fakeProtocol{}
	s, err := New(testConfig(), revenue(t), fake, r, nil)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, credential.ErrMissing)
	assert.Empty(t, fake.calls)
	assert.Equal(t, "OpenAI API key not found. Application cannot proceed.", PresentError(err, "OpenAI API key"))
}

func TestNew_SuppliedCredentialWinsOverEnvironment(t *testing.T) {
	const envVar = "PAIDATA_TEST_SESSION_KEY"
	t.Setenv(envVar, "sk-from-env")
	r := credential.NewEnvResolver(envVar)
	require.NoError(t, r.Supply("sk-typed"))

	fake := &fakeProtocol{replies: []reply{{text: "ok"}, {text: "ok"}}}
	s, err := New(testConfig(), revenue(t), fake, r, nil)
	require.NoError(t, err)

	s.Ask(context.Background(), "one?")
	s.Ask(context.Background(), "two?")
	assert.Equal(t, []string{"sk-typed", "sk-typed"}, fake.creds)
}

func TestSessions_DoNotShareCredentials(t *testing.T) {
	fa := &fakeProtocol{replies: []reply{{text: "a"}}}
	fb := &fakeProtocol{replies: []reply{{text: "b"}}}

	a, err := New(testConfig(), revenue(t), fa, supplied(t, "sk-a"), nil)
	require.NoError(t, err)
	b, err := New(testConfig(), revenue(t), fb, supplied(t, "sk-b"), nil)
	require.NoError(t, err)

	a.Ask(context.Background(), "q?")
	b.Ask(context.Background(), "q?")
	assert.Equal(t, []string{"sk-a"}, fa.creds)
	assert.Equal(t, []string{"sk-b"}, fb.creds)
}

func TestNew_RowLimitFragment(t *testing.T) {
	rows := make([][]string, 100)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("Company %d", i+1), fmt.Sprint(i)}
	}
	ds, err := dataset.New("big.csv", []string{"Name", "Revenue"}, rows)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Policy = dataset.RowLimit(5)
	s, err := New(cfg, ds, &fakeProtocol{}, supplied(t, "sk-a"), nil)
	require.NoError(t, err)

	frag := s.Fragment()
	assert.Len(t, strings.Split(frag.Text, "\n"), 6)
	assert.True(t, frag.Truncated)
	assert.Equal(t, "fake", s.Protocol())
	assert.Equal(t, "gpt-4", s.Model())
	assert.Same(t, ds, s.Dataset())
}

func TestNew_RejectsMissingParts(t *testing.T) {
	_, err := New(testConfig(), nil, &fakeProtocol{}, supplied(t, "sk"), nil)
	assert.Error(t, err)
	_, err = New(testConfig(), revenue(t), nil, supplied(t, "sk"), nil)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	c := config.Default()
	c.Context.Policy = "rows:5"
	c.AI.SystemPrompt = "Be terse."

	sc, err := FromConfig(c)
	require.NoError(t, err)
	assert.Equal(t, dataset.RowLimit(5), sc.Policy)
	assert.Equal(t, "gpt-4", sc.Model)
	assert.Equal(t, 0.5, sc.Temperature)
	assert.Equal(t, 512, sc.MaxTokens)
	assert.Equal(t, 60*time.Second, sc.Timeout)
	assert.Equal(t, "Be terse.", sc.Template.System)
	assert.Equal(t, ai.DefaultTemplate().User, sc.Template.User)

	c.Context.Policy = "some"
	_, err = FromConfig(c)
	assert.ErrorContains(t, err, "context.policy")

	c.Context.Policy = ""
	sc, err = FromConfig(c)
	require.NoError(t, err)
	assert.Equal(t, dataset.Full(), sc.Policy)
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bi.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name;Revenue\nAlice;1000\n"), 0600))

	ds, err := LoadDataset(context.Background(), config.DatasetConfig{Source: config.SourceCSV, Path: path, Encoding: "utf-8", Delimiter: ";"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Revenue"}, ds.Columns())

	_, err = LoadDataset(context.Background(), config.DatasetConfig{Path: filepath.Join(dir, "missing.csv")})
	var le *dataset.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, dataset.LoadFileNotFound, le.Kind)

	_, err = LoadDataset(context.Background(), config.DatasetConfig{Source: "s3"})
	require.ErrorAs(t, err, &le)
	assert.Equal(t, dataset.LoadOther, le.Kind)
}
