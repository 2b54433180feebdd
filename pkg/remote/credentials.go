package remote

import (
	"sort"
	"strings"

	"github.com/Ramsey-B/verzoeken/pkg/models"
)

// CredentialStore resolves the credential whose api root is the longest prefix of a url.
type CredentialStore struct {
	credentials []models.APICredential
}

func NewCredentialStore(credentials []models.APICredential) *CredentialStore {
	sorted := make([]models.APICredential, len(credentials))
	copy(sorted, credentials)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].APIRoot) > len(sorted[j].APIRoot)
	})
	return &CredentialStore{credentials: sorted}
}

// Lookup returns the credential for url. The match is on the api root followed by a path boundary.
func (s *CredentialStore) Lookup(url string) (models.APICredential, bool) {
	for _, cred := range s.credentials {
		root := strings.TrimSuffix(cred.APIRoot, "/")
		if url == root || strings.HasPrefix(url, root+"/") {
			return cred, true
		}
	}
	return models.APICredential{}, false
}

func (s *CredentialStore) Len() int {
	return len(s.credentials)
}
