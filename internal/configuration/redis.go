package configuration

import (
	"fmt"

	"github.com/pkg/errors"
)

// Redis is optional. Reports are not stored when Host is empty.
type Redis struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

func (r *Redis) Enabled() bool {
	return r.Host != ""
}

func (r *Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (r *Redis) Validate() error {
	if r.Host == "" {
		return errors.New("redis host is required")
	}
	if r.Port == 0 {
		return errors.New("redis port is required")
	}
	if r.DB < 0 {
		return errors.New("redis db cannot be negative")
	}

	return nil
}
