// internal/wallet/secret.go
package wallet

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretSource returns the payload of a named secret.
type SecretSource func(ctx context.Context, name string) ([]byte, error)

// GCPSecretSource reads secrets from Google Secret Manager.
func GCPSecretSource(ctx context.Context, name string) ([]byte, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	res, err := client.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("access secret version %s: %w", name, err)
	}
	return res.Payload.Data, nil
}

// SecretVersionName expands "project/secret" into a latest-version resource
// name; full resource names are returned unchanged.
func SecretVersionName(name string) (string, error) {
	if strings.HasPrefix(name, "projects/") {
		if !strings.Contains(name, "/versions/") {
			name += "/versions/latest"
		}
		return name, nil
	}
	parts := strings.Split(name, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("secret name %q must be project/secret or a full resource name", name)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", parts[0], parts[1]), nil
}

// LoadFromSecret loads a keypair stored as a JSON byte array or base58 string.
func LoadFromSecret(ctx context.Context, source SecretSource, name string) (*Wallet, error) {
	resource, err := SecretVersionName(name)
	if err != nil {
		return nil, err
	}
	payload, err := source(ctx, resource)
	if err != nil {
		return nil, err
	}
	defer func() {
		for i := range payload {
			payload[i] = 0
		}
	}()
	return parseKeyMaterial(payload)
}
