package util

import (
	"errors"
	"fmt"
	_ "github.com/joho/godotenv/autoload"
	"log"
	"os"
)

type configValue struct {
	envVarName   string
	required     bool
	errorMessage string
	defaultValue string
	Value        string
}

type Config struct {
	DbConnectionString    configValue
	SeqUrl                configValue
	SeqToken              configValue
	Environment           configValue
	DvfDataDir            configValue
	CommuneIndicatorsFile configValue
	SourcePrimary         configValue
	SourceSecondary       configValue
}

func NewConfig() *Config {
	const dbConnectionStringName = "DB_CONNECTION_STRING"
	const seqUrlName = "SEQ_URL"
	const seqTokenName = "SEQ_TOKEN"
	const environmentName = "ENVIRONMENT"
	const dvfDataDirName = "DVF_DATA_DIR"
	const communeIndicatorsFileName = "COMMUNE_INDICATORS_FILE"
	const sourcePrimaryName = "SOURCE_PRIMARY"
	const sourceSecondaryName = "SOURCE_SECONDARY"

	return &Config{
		DbConnectionString: configValue{
			envVarName:   dbConnectionStringName,
			required:     true,
			errorMessage: fmt.Sprintf("make sure that environment variable %s is set and in DSN format", dbConnectionStringName),
		},
		SeqUrl: configValue{
			envVarName: seqUrlName,
			required:   false,
		},
		SeqToken: configValue{
			envVarName: seqTokenName,
			required:   false,
		},
		Environment: configValue{
			envVarName:   environmentName,
			required:     false,
			defaultValue: "development",
		},
		DvfDataDir: configValue{
			envVarName:   dvfDataDirName,
			required:     false,
			defaultValue: "data/dvf",
		},
		CommuneIndicatorsFile: configValue{
			envVarName:   communeIndicatorsFileName,
			required:     false,
			defaultValue: "data/commune_indicators.json",
		},
		SourcePrimary: configValue{
			envVarName:   sourcePrimaryName,
			required:     false,
			defaultValue: "licitor",
		},
		SourceSecondary: configValue{
			envVarName:   sourceSecondaryName,
			required:     false,
			defaultValue: "encheres_publiques",
		},
	}
}

var config *Config

func GetConfig() *Config {
	if config == nil {
		return load()
	}

	return config
}

func load() *Config {
	config := NewConfig()

	if err := populateEnv(&config.DbConnectionString); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.SeqUrl); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.SeqToken); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.Environment); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.DvfDataDir); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.CommuneIndicatorsFile); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.SourcePrimary); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.SourceSecondary); err != nil {
		log.Fatal(err)
	}

	return config
}

func populateEnv(m *configValue) (err error) {
	v := os.Getenv(m.envVarName)

	if v == "" && m.required {
		if m.errorMessage != "" {
			return errors.New(m.errorMessage)
		}

		return fmt.Errorf("environment variable %s is not set", m.envVarName)
	}

	if v == "" && m.defaultValue != "" {
		m.Value = m.defaultValue
		return nil
	}

	m.Value = v
	return nil
}
