package storage

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/yourname/bloomhealth/internal"
)

// FirestoreStore sets each record as a Firestore document.
type FirestoreStore struct {
	client *firestore.Client
	logger internal.Logger
}

// NewFirestoreStore initializes a Firebase app from a service account file,
// or from application default credentials when the path is empty.
func NewFirestoreStore(ctx context.Context, projectID, serviceAccountPath string, logger internal.Logger) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if serviceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	} else {
		logger.Warnf("FIREBASE_SERVICE_ACCOUNT_PATH not set, will use application default credentials")
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		logger.Errorf("failed to initialize firebase app: %v", err)
		return nil, err
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		logger.Errorf("failed to initialize firestore client: %v", err)
		return nil, err
	}
	logger.Infof("firestore client initialized")
	return &FirestoreStore{client: client, logger: logger}, nil
}

func (f *FirestoreStore) Put(ctx context.Context, collection, id string, record map[string]any) error {
	if _, err := f.client.Collection(collection).Doc(id).Set(ctx, record); err != nil {
		f.logger.Errorf("failed to set firestore document: %v", err)
		return err
	}
	return nil
}

func (f *FirestoreStore) Close() error {
	return f.client.Close()
}

var _ DocumentStore = (*FirestoreStore)(nil)
