package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string
	// DatabaseURL selects SQL persistence (postgres:// or sqlite://). Empty
	// falls back to JSON files under StorePath.
	DatabaseURL string
	StorePath   string
	// AllowedOrigins restricts CORS. Empty echoes any origin.
	AllowedOrigins []string

	Artifact      ArtifactConfig
	LLM           LLMConfig
	Questionnaire QuestionnaireConfig
	Workflow      WorkflowConfig
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLExpiry time.Duration
}

// CanUseS3 reports whether the S3 settings are complete enough to build a client.
func (c ArtifactConfig) CanUseS3() bool {
	return c.Enabled &&
		strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	RPS      float64
	Burst    int
	Retries  int
	// MaxQuestions caps one generated questionnaire.
	MaxQuestions int
}

type QuestionnaireConfig struct {
	TemplatesPath        string
	CallTimeout          time.Duration
	ConfidenceUser       float64
	ConfidenceAccepted   float64
	ConfidenceBackfill   float64
	RevalidateOnComplete bool
	SessionTTL           time.Duration
	MaxSessions          int
}

type WorkflowConfig struct {
	InvalidateDownstream bool
}

func Load() (*Config, error) {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	_ = godotenv.Load()

	port := fs.String("port", ":8081", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	llmCfg, err := loadLLMConfig(env)
	if err != nil {
		return nil, err
	}
	qCfg, err := loadQuestionnaireConfig()
	if err != nil {
		return nil, err
	}
	artifactCfg, err := loadArtifactConfig(env)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:           *port,
		Env:            env,
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StorePath:      firstNonEmpty(strings.TrimSpace(os.Getenv("STORE_PATH")), "tmp"),
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Artifact:       artifactCfg,
		LLM:            llmCfg,
		Questionnaire:  qCfg,
		Workflow: WorkflowConfig{
			InvalidateDownstream: envBool("INVALIDATE_DOWNSTREAM", false),
		},
	}, nil
}

func loadArtifactConfig(env string) (ArtifactConfig, error) {
	endpoint := resolveArtifactEndpoint(env)
	expiry, err := envDuration("ARTIFACT_URL_EXPIRY", time.Hour)
	if err != nil {
		return ArtifactConfig{}, err
	}
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "proposalflow-rfps"),
		UseSSL:    resolveArtifactUseSSL(env),
		URLExpiry: expiry,
	}, nil
}

// Locally MinIO is opt-in through ARTIFACT_MINIO_ENDPOINT; elsewhere a real
// S3 endpoint is required to leave the database or disk fallback.
func resolveArtifactEndpoint(env string) string {
	if isLocal(env) {
		return strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if isLocal(env) {
		return false
	}
	return envBool("ARTIFACT_S3_USE_SSL", true)
}

func loadLLMConfig(env string) (LLMConfig, error) {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	apiKey := firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")))
	if provider == "" {
		if apiKey != "" {
			provider = "gemini"
		} else {
			provider = "fake"
		}
	}
	switch provider {
	case "gemini":
		if apiKey == "" {
			return LLMConfig{}, fmt.Errorf("LLM_PROVIDER=gemini requires GEMINI_API_KEY")
		}
	case "fake":
		if !isLocal(env) {
			return LLMConfig{}, fmt.Errorf("LLM_PROVIDER=fake is only allowed when APP_ENV=local")
		}
	default:
		return LLMConfig{}, fmt.Errorf("unknown LLM_PROVIDER %q", provider)
	}

	rps, err := envFloat("LLM_RPS", 1)
	if err != nil {
		return LLMConfig{}, err
	}
	burst, err := envInt("LLM_BURST", 2)
	if err != nil {
		return LLMConfig{}, err
	}
	retries, err := envInt("LLM_RETRIES", 2)
	if err != nil {
		return LLMConfig{}, err
	}
	maxQ, err := envInt("LLM_MAX_QUESTIONS", 8)
	if err != nil {
		return LLMConfig{}, err
	}
	return LLMConfig{
		Provider:     provider,
		APIKey:       apiKey,
		Model:        strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		RPS:          rps,
		Burst:        burst,
		Retries:      retries,
		MaxQuestions: maxQ,
	}, nil
}

func loadQuestionnaireConfig() (QuestionnaireConfig, error) {
	timeout, err := envDuration("QUESTIONNAIRE_CALL_TIMEOUT", 30*time.Second)
	if err != nil {
		return QuestionnaireConfig{}, err
	}
	ttl, err := envDuration("QUESTIONNAIRE_SESSION_TTL", 30*time.Minute)
	if err != nil {
		return QuestionnaireConfig{}, err
	}
	maxSessions, err := envInt("QUESTIONNAIRE_MAX_SESSIONS", 1024)
	if err != nil {
		return QuestionnaireConfig{}, err
	}
	user, err := envFloat("CONFIDENCE_USER", 1.0)
	if err != nil {
		return QuestionnaireConfig{}, err
	}
	accepted, err := envFloat("CONFIDENCE_ACCEPTED", 0.8)
	if err != nil {
		return QuestionnaireConfig{}, err
	}
	backfill, err := envFloat("CONFIDENCE_BACKFILL", 0.6)
	if err != nil {
		return QuestionnaireConfig{}, err
	}
	return QuestionnaireConfig{
		TemplatesPath:        strings.TrimSpace(os.Getenv("QUESTIONNAIRE_TEMPLATES")),
		CallTimeout:          timeout,
		ConfidenceUser:       user,
		ConfidenceAccepted:   accepted,
		ConfidenceBackfill:   backfill,
		RevalidateOnComplete: envBool("REVALIDATE_ON_COMPLETE", false),
		SessionTTL:           ttl,
		MaxSessions:          maxSessions,
	}, nil
}

func isLocal(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "local")
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
