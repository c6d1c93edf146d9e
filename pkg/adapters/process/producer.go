package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/folio/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrEmptyOutput is returned when the command succeeds but prints no page text.
var ErrEmptyOutput = errors.New("producer returned no text")

// EnvPrefix prefixes the environment variables carrying request fields.
const EnvPrefix = "FOLIO_ARG_"

// Producer implements ports.Producer by running a local command.
// The request is written to stdin as JSON and mirrored into FOLIO_ARG_* variables;
// the command prints a JSON or YAML document shaped like domain.Generated.
type Producer struct {
	command string
	args    []string
	env     map[string]string
	dir     string
	timeout time.Duration
}

// Option configures the producer.
type Option func(*Producer)

// WithDir sets the working directory for the command.
func WithDir(dir string) Option {
	return func(p *Producer) {
		p.dir = dir
	}
}

// WithTimeout bounds each generation. Zero means no limit beyond ctx.
func WithTimeout(d time.Duration) Option {
	return func(p *Producer) {
		p.timeout = d
	}
}

// WithEnv adds static environment variables.
func WithEnv(env map[string]string) Option {
	return func(p *Producer) {
		for k, v := range env {
			p.env[k] = v
		}
	}
}

// New creates a producer for command and its fixed arguments.
func New(command string, args []string, opts ...Option) *Producer {
	p := &Producer{
		command: command,
		args:    args,
		env:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromConfig creates a producer from a loaded configuration entry.
func FromConfig(cfg ProducerConfig, opts ...Option) *Producer {
	return New(cfg.Command, cfg.Args, append([]Option{WithEnv(cfg.Environment)}, opts...)...)
}

// Generate runs the command once for req.
func (p *Producer) Generate(ctx context.Context, req domain.GenerationRequest) (domain.Generated, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.Generated{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.command, p.args...)
	cmd.Dir = p.dir
	cmd.WaitDelay = time.Second
	cmd.Stdin = bytes.NewReader(payload)

	// Request fields travel as environment values, never as flags.
	env := make([]string, 0, len(p.env)+8)
	for k, v := range p.env {
		env = append(env, k+"="+v)
	}
	env = append(env, requestEnv(req)...)
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Generated{}, fmt.Errorf("producer canceled: %w", ctxErr)
		}
		return domain.Generated{}, fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return Decode(stdout.Bytes())
}

// Decode parses producer output. YAML is a superset of JSON, so both are accepted.
// Plain text without structure becomes a single ending page.
func Decode(out []byte) (domain.Generated, error) {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return domain.Generated{}, ErrEmptyOutput
	}

	var raw any
	if err := yaml.Unmarshal([]byte(trimmed), &raw); err != nil {
		return domain.Generated{}, fmt.Errorf("failed to parse producer output: %w", err)
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		return domain.Generated{Text: trimmed, Ending: true}, nil
	}

	var gen domain.Generated
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &gen,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.Generated{}, err
	}
	if err := decoder.Decode(doc); err != nil {
		return domain.Generated{}, fmt.Errorf("failed to decode producer output: %w", err)
	}

	gen.Text = strings.TrimSpace(gen.Text)
	if gen.Text == "" {
		return domain.Generated{}, ErrEmptyOutput
	}
	for i := range gen.Choices {
		gen.Choices[i].Outcome = domain.Outcome(strings.ToLower(string(gen.Choices[i].Outcome))).Normalize()
	}
	return gen, nil
}

func requestEnv(req domain.GenerationRequest) []string {
	scores, _ := json.Marshal(req.Scores)
	vars := map[string]string{
		"STORY_ID":  req.StoryID,
		"TITLE":     req.Title,
		"PROMPT":    req.Prompt,
		"NODE_ID":   req.NodeID,
		"NODE_TEXT": req.NodeText,
		"CHOICE_ID": req.ChoiceID,
		"CHOICE":    req.Choice,
		"SCORES":    string(scores),
		"MUST_END":  fmt.Sprintf("%t", req.MustEnd),
	}
	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, EnvPrefix+k+"="+v)
	}
	return env
}
