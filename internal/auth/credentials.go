package auth

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"lodgeportal/internal/entity"
)

// Credentials is the read-only user directory loaded from the YAML
// config. There is no safe default for a missing file, so LoadCredentials
// errors and the caller stops hard.
type Credentials struct {
	users map[string]credentialRecord
}

type credentialRecord struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type credentialsFile struct {
	Credentials struct {
		Usernames map[string]credentialRecord `yaml:"usernames"`
	} `yaml:"credentials"`
}

func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials config: %w", err)
	}
	var file credentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse credentials config: %w", err)
	}
	if file.Credentials.Usernames == nil {
		file.Credentials.Usernames = map[string]credentialRecord{}
	}
	return &Credentials{users: file.Credentials.Usernames}, nil
}

// Authenticate matches login against either the username key or the
// display name, then verifies the password. Usernames are scanned in
// sorted order so a name shared by two entries resolves deterministically.
func (c *Credentials) Authenticate(login, password string) (entity.User, bool) {
	login = strings.TrimSpace(login)
	if login == "" {
		return entity.User{}, false
	}
	for _, username := range c.sortedUsernames() {
		record := c.users[username]
		if login != username && login != strings.TrimSpace(record.Name) {
			continue
		}
		if !VerifyPassword(record.Password, password) {
			continue
		}
		return c.userFor(username, record), true
	}
	return entity.User{}, false
}

// RoleFor resolves a role by username, then email, then display name.
// Unknown identities get aprendiz, the least privilege.
func (c *Credentials) RoleFor(username, email, name string) string {
	if record, ok := c.users[username]; ok && username != "" {
		return normalizeRole(record.Role)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.ToLower(strings.TrimSpace(name))
	for _, u := range c.sortedUsernames() {
		record := c.users[u]
		if email != "" && strings.ToLower(strings.TrimSpace(record.Email)) == email {
			return normalizeRole(record.Role)
		}
	}
	for _, u := range c.sortedUsernames() {
		record := c.users[u]
		if name != "" && strings.ToLower(strings.TrimSpace(record.Name)) == name {
			return normalizeRole(record.Role)
		}
	}
	return "aprendiz"
}

func (c *Credentials) userFor(username string, record credentialRecord) entity.User {
	name := strings.TrimSpace(record.Name)
	if name == "" {
		name = username
	}
	return entity.User{
		Username: username,
		Name:     name,
		Email:    record.Email,
		Role:     normalizeRole(record.Role),
	}
}

func (c *Credentials) sortedUsernames() []string {
	usernames := make([]string, 0, len(c.users))
	for u := range c.users {
		usernames = append(usernames, u)
	}
	sort.Strings(usernames)
	return usernames
}

func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return "aprendiz"
	}
	return role
}
