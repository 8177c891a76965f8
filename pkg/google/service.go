package google

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewCalendarService builds an authenticated Google Calendar API client from
// a service account key file. When delegatedUser is non-empty the service
// account impersonates that user (domain-wide delegation).
func NewCalendarService(ctx context.Context, credentialsFile string, delegatedUser string) (*gcal.Service, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key %s: %w", credentialsFile, err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}
	log.Debugf("Using service account: %s", jwtConfig.Email)

	if delegatedUser != "" {
		log.Debugf("Impersonating delegated user: %s", delegatedUser)
		jwtConfig.Subject = delegatedUser
	}

	service, err := gcal.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to build Calendar client: %w", err)
	}

	return service, nil
}
