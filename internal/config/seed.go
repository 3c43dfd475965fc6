package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"prizewheel/internal/models"
)

// DefaultPrizes is the wheel a fresh install starts with.
func DefaultPrizes() []models.Prize {
	return []models.Prize{
		{Name: "GET A CLUE", Probability: 20, UsageLimit: 0},
		{Name: "DETOUR", Probability: 20, UsageLimit: 1},
		{Name: "ROADBLOCK", Probability: 60, UsageLimit: 0},
	}
}

type seedFile struct {
	Prizes []models.Prize `yaml:"prizes"`
}

// LoadSeed reads the starting prize list from a YAML file such as
//
//	prizes:
//	  - name: DETOUR
//	    probability: 20
//	    usage_limit: 1
//
// A missing file yields DefaultPrizes.
func LoadSeed(path string) ([]models.Prize, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPrizes(), nil
		}
		return nil, err
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return seed.Prizes, nil
}

// LoadRows reads admin rows from a YAML file with the same layout as the seed file.
func LoadRows(path string) ([]models.PrizeRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Prizes []models.PrizeRow `yaml:"prizes"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rows file %s: %w", path, err)
	}
	return file.Prizes, nil
}
