package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/mcoot/registrar/internal/model"
)

// fileConfig is the HCL schema. Every block and attribute is optional; unset
// values keep their defaults.
type fileConfig struct {
	Server       *serverBlock       `hcl:"server,block"`
	Storage      *storageBlock      `hcl:"storage,block"`
	Registration *registrationBlock `hcl:"registration,block"`
	Log          *logBlock          `hcl:"log,block"`
}

type serverBlock struct {
	Host            *string `hcl:"host,optional"`
	Port            *int    `hcl:"port,optional"`
	ReadTimeout     *string `hcl:"read_timeout,optional"`
	WriteTimeout    *string `hcl:"write_timeout,optional"`
	ShutdownTimeout *string `hcl:"shutdown_timeout,optional"`
}

type storageBlock struct {
	Type         *string `hcl:"type,optional"`
	RedisURL     *string `hcl:"redis_url,optional"`
	PoolSize     *int    `hcl:"pool_size,optional"`
	MinIdleConns *int    `hcl:"min_idle_conns,optional"`
	SessionTTL   *string `hcl:"session_ttl,optional"`
}

type registrationBlock struct {
	EmailSuffix     *string `hcl:"email_suffix,optional"`
	MinimumAge      *int    `hcl:"minimum_age,optional"`
	StrictAge       *bool   `hcl:"strict_age,optional"`
	NoteMaxLength   *int    `hcl:"note_max_length,optional"`
	PasswordStorage *string `hcl:"password_storage,optional"`
	DuplicateEmail  *string `hcl:"duplicate_email,optional"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// LoadFile parses an HCL config file on top of Default()
func LoadFile(path string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
	}
	return decode(file, path)
}

// Parse decodes HCL source on top of Default(). filename is used in diagnostics.
func Parse(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file %s: %s", filename, diags.Error())
	}
	return decode(file, filename)
}

func decode(file *hcl.File, filename string) (Config, error) {
	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL file %s: %s", filename, diags.Error())
	}

	cfg := Default()
	if err := fc.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

func (fc fileConfig) apply(cfg *Config) error {
	if b := fc.Server; b != nil {
		setString(&cfg.Server.Host, b.Host)
		setInt(&cfg.Server.Port, b.Port)
		if err := setDuration(&cfg.Server.ReadTimeout, b.ReadTimeout, "server.read_timeout"); err != nil {
			return err
		}
		if err := setDuration(&cfg.Server.WriteTimeout, b.WriteTimeout, "server.write_timeout"); err != nil {
			return err
		}
		if err := setDuration(&cfg.Server.ShutdownTimeout, b.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
			return err
		}
	}

	if b := fc.Storage; b != nil {
		setString(&cfg.Storage.Type, b.Type)
		setString(&cfg.Storage.RedisURL, b.RedisURL)
		setInt(&cfg.Storage.PoolSize, b.PoolSize)
		setInt(&cfg.Storage.MinIdleConns, b.MinIdleConns)
		if err := setDuration(&cfg.Storage.SessionTTL, b.SessionTTL, "storage.session_ttl"); err != nil {
			return err
		}
	}

	if b := fc.Registration; b != nil {
		setString(&cfg.Registration.EmailSuffix, b.EmailSuffix)
		setInt(&cfg.Registration.MinimumAge, b.MinimumAge)
		if b.StrictAge != nil {
			cfg.Registration.StrictAge = *b.StrictAge
		}
		setInt(&cfg.Registration.NoteMaxLength, b.NoteMaxLength)
		if b.PasswordStorage != nil {
			cfg.Registration.PasswordStorage = model.PasswordStorage(*b.PasswordStorage)
		}
		if b.DuplicateEmail != nil {
			cfg.Registration.DuplicatePolicy = model.DuplicatePolicy(*b.DuplicateEmail)
		}
	}

	if b := fc.Log; b != nil {
		setString(&cfg.Log.Level, b.Level)
		setString(&cfg.Log.Format, b.Format)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
