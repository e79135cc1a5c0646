package admin

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
)

const usersCollection = "users"

// FirebaseUsers implements Users with the Firebase Admin SDK.
type FirebaseUsers struct {
	client *fbauth.Client
}

// NewFirebaseUsers wraps a Firebase auth client.
func NewFirebaseUsers(client *fbauth.Client) *FirebaseUsers {
	return &FirebaseUsers{client: client}
}

func (f *FirebaseUsers) UserByEmail(ctx context.Context, email string) (User, error) {
	rec, err := f.client.GetUserByEmail(ctx, email)
	if fbauth.IsUserNotFound(err) {
		return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	if err != nil {
		return User{}, fmt.Errorf("firebase/auth: %w", err)
	}
	return User{UID: rec.UID, Email: rec.Email}, nil
}

func (f *FirebaseUsers) SetClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	return f.client.SetCustomUserClaims(ctx, uid, claims)
}

func (f *FirebaseUsers) Delete(ctx context.Context, uid string) error {
	return f.client.DeleteUser(ctx, uid)
}

// FirestoreProfiles implements Profiles on the users collection.
type FirestoreProfiles struct {
	client *firestore.Client
}

// NewFirestoreProfiles wraps a Firestore client.
func NewFirestoreProfiles(client *firestore.Client) *FirestoreProfiles {
	return &FirestoreProfiles{client: client}
}

func (f *FirestoreProfiles) All(ctx context.Context) ([]Profile, error) {
	iter := f.client.Collection(usersCollection).Documents(ctx)
	defer iter.Stop()

	var out []Profile
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("firestore/users: %w", err)
		}
		out = append(out, Profile{UID: doc.Ref.ID, Fields: doc.Data()})
	}
}

func (f *FirestoreProfiles) Merge(ctx context.Context, uid string, fields map[string]interface{}) error {
	_, err := f.client.Collection(usersCollection).Doc(uid).Set(ctx, fields, firestore.MergeAll)
	return err
}

func (f *FirestoreProfiles) Delete(ctx context.Context, uid string) error {
	_, err := f.client.Collection(usersCollection).Doc(uid).Delete(ctx)
	return err
}
