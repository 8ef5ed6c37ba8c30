// Package credentials keeps connector credential descriptors and acquisition state in Redis.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const (
	providerKeyPrefix = "credentials:provider:"
	stateKeyPrefix    = "credentials:state:"

	// DefaultStateTTL bounds how long an issued acquisition state stays redeemable.
	DefaultStateTTL = 10 * time.Minute
)

var (
	// ErrNotConfigured is returned when no credential provider is registered for a connector.
	ErrNotConfigured = errors.New("credentials provider not configured")

	ErrInvalidConnectorID = errors.New("invalid connector id")

	// ErrUnknownState is returned for acquisition states that were never issued, expired or
	// were already redeemed.
	ErrUnknownState = errors.New("unknown acquisition state")
)

// Store reads and writes credential descriptors keyed by connector id.
type Store struct {
	client   redis.UniversalClient
	logger   *slog.Logger
	stateTTL time.Duration
}

// NewStore connects to the Redis server at redisURL.
func NewStore(ctx context.Context, logger *slog.Logger, redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return NewStoreWithClient(client, logger), nil
}

func NewStoreWithClient(client redis.UniversalClient, logger *slog.Logger) *Store {
	return &Store{
		client:   client,
		logger:   logger.With("module", "credentials"),
		stateTTL: DefaultStateTTL,
	}
}

// Fetch returns the descriptor registered for connectorID. When nothing is registered the
// returned credentials carry only the connector id, so they are not Present.
func (s *Store) Fetch(ctx context.Context, connectorID string) (*models.Credentials, error) {
	if connectorID == "" {
		return nil, ErrInvalidConnectorID
	}

	fields, err := s.client.HGetAll(ctx, providerKeyPrefix+connectorID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch credentials for %s: %w", connectorID, err)
	}

	creds := &models.Credentials{ConnectorID: connectorID}
	if len(fields) == 0 {
		return creds, nil
	}

	creds.Type = fields["type"]
	creds.Label = fields["label"]
	creds.Icon = fields["icon"]
	creds.Description = fields["description"]
	creds.AuthorizationURL = fields["authorization_url"]
	creds.Configured, _ = strconv.ParseBool(fields["configured"])

	return creds, nil
}

// Register stores the descriptor under its connector id, replacing any previous one.
func (s *Store) Register(ctx context.Context, creds *models.Credentials) error {
	if creds == nil || creds.ConnectorID == "" {
		return ErrInvalidConnectorID
	}

	err := s.client.HSet(ctx, providerKeyPrefix+creds.ConnectorID,
		"type", creds.Type,
		"label", creds.Label,
		"icon", creds.Icon,
		"description", creds.Description,
		"authorization_url", creds.AuthorizationURL,
		"configured", strconv.FormatBool(creds.Configured),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to register credentials for %s: %w", creds.ConnectorID, err)
	}

	return nil
}

// Acquire starts an acquisition for connectorID: it issues a state token, keeps it for the
// state TTL and returns the URL the user has to visit.
func (s *Store) Acquire(ctx context.Context, connectorID string) (*models.AcquisitionResponse, error) {
	creds, err := s.Fetch(ctx, connectorID)
	if err != nil {
		return nil, err
	}

	if !creds.Present() {
		return nil, fmt.Errorf("%s: %w", connectorID, ErrNotConfigured)
	}

	state := uuid.New().String()

	err = s.client.Set(ctx, stateKeyPrefix+state, connectorID, s.stateTTL).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store acquisition state: %w", err)
	}

	s.logger.DebugContext(ctx, "issued acquisition state", "connector_id", connectorID, "state", state)

	return &models.AcquisitionResponse{
		ConnectorID: connectorID,
		Type:        creds.Type,
		RedirectURL: redirectURL(creds.AuthorizationURL, state),
		State:       state,
	}, nil
}

// ConnectorForState redeems an unexpired state and returns the connector id it was issued for.
// A state can be redeemed once.
func (s *Store) ConnectorForState(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", ErrUnknownState
	}

	connectorID, err := s.client.GetDel(ctx, stateKeyPrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrUnknownState
		}

		return "", fmt.Errorf("failed to read acquisition state: %w", err)
	}

	s.logger.DebugContext(ctx, "redeemed acquisition state", "connector_id", connectorID)

	return connectorID, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func redirectURL(authorizationURL, state string) string {
	u, err := url.Parse(authorizationURL)
	if err != nil || authorizationURL == "" {
		return "?state=" + url.QueryEscape(state)
	}

	query := u.Query()
	query.Set("state", state)
	u.RawQuery = query.Encode()

	return u.String()
}
