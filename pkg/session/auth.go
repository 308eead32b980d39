package session

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/mitchellh/mapstructure"
)

// Auth is the login payload returned by the API. Fields the client does
// not use are kept in Extra so they survive a save and restore.
type Auth struct {
	ID           int64          `mapstructure:"id"`
	Username     string         `mapstructure:"username"`
	Fullname     string         `mapstructure:"fullname"`
	DepartmentID int64          `mapstructure:"department_id"`
	UserLevelID  int64          `mapstructure:"user_level_id"`
	Token        string         `mapstructure:"token"`
	RefreshToken string         `mapstructure:"refresh_token"`
	Extra        map[string]any `mapstructure:",remain"`
}

// DecodeAuth builds an Auth from a decoded JSON object. Numeric fields
// accept numbers or numeric strings.
func DecodeAuth(data map[string]any) (Auth, error) {
	var a Auth
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &a,
	})
	if err != nil {
		return Auth{}, fmt.Errorf("failed to create auth decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return Auth{}, fmt.Errorf("failed to decode auth data: %w", err)
	}
	if a.Token == "" {
		return Auth{}, fmt.Errorf("auth data has no token")
	}
	return a, nil
}

// Map flattens the auth back into the API's object shape.
func (a Auth) Map() map[string]any {
	m := make(map[string]any, len(a.Extra)+7)
	maps.Copy(m, a.Extra)
	m["id"] = a.ID
	m["username"] = a.Username
	m["fullname"] = a.Fullname
	m["department_id"] = a.DepartmentID
	m["user_level_id"] = a.UserLevelID
	m["token"] = a.Token
	m["refresh_token"] = a.RefreshToken
	return m
}

// MarshalJSON encodes the flattened form.
func (a Auth) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Map())
}

// UnmarshalJSON decodes an API auth object.
func (a *Auth) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	decoded, err := DecodeAuth(m)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}
