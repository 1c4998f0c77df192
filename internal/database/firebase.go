package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseConfig selects the service account used by the Admin SDK. With no
// credentials file, application default credentials are used.
type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

// InitFirebase connects the Firebase Admin SDK and returns its Firestore and Auth clients.
func InitFirebase(ctx context.Context, cfg FirebaseConfig) (*firestore.Client, *auth.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("firebase app: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		firestoreClient.Close()
		return nil, nil, fmt.Errorf("auth client: %w", err)
	}

	return firestoreClient, authClient, nil
}
