// cmd/tools/vocab-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gt-analyzer/pkg/vocabulary"
)

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	nameAdd := addCmd.String("name", "", "Canonical kind name (e.g., causes)")
	descriptionAdd := addCmd.String("description", "", "Description of the relationship kind")
	categoryAdd := addCmd.String("category", "", "Category (causal, contextual, strategic, structural)")
	aliasesAdd := addCmd.String("aliases", "", "Comma-separated aliases (e.g., \"leads to,results in\")")
	pathAdd := addCmd.String("path", "configs/vocabulary.json", "Path to vocabulary file")

	// Update command flags
	nameUpdate := updateCmd.String("name", "", "Kind name to update")
	field := updateCmd.String("field", "", "Field to update (description, category, aliases)")
	value := updateCmd.String("value", "", "New value for the field")
	pathUpdate := updateCmd.String("path", "configs/vocabulary.json", "Path to vocabulary file")

	// Validate command flags
	pathValidate := validateCmd.String("path", "configs/vocabulary.json", "Path to vocabulary file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *nameAdd == "" || *descriptionAdd == "" || *categoryAdd == "" {
			fmt.Println("Error: name, description, and category are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		kind := vocabulary.RelationshipKind{
			Name:        *nameAdd,
			Description: *descriptionAdd,
			Category:    *categoryAdd,
			Aliases:     splitAliases(*aliasesAdd),
		}
		if err := addKind(*pathAdd, kind); err != nil {
			fmt.Printf("Error adding kind: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added kind: %s\n", *nameAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *nameUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: name, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateKind(*pathUpdate, *nameUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating kind: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated kind %s, field %s to %s\n", *nameUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateVocabulary(*pathValidate); err != nil {
			fmt.Printf("Vocabulary validation failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func splitAliases(raw string) []string {
	if raw == "" {
		return nil
	}
	var aliases []string
	for _, alias := range strings.Split(raw, ",") {
		alias = strings.TrimSpace(alias)
		if alias != "" {
			aliases = append(aliases, alias)
		}
	}
	return aliases
}

func loadOrInit(path string) (*vocabulary.Vocabulary, error) {
	vocab, err := vocabulary.LoadVocabulary(path)
	if err != nil {
		// If file doesn't exist, start from the built-in vocabulary
		if os.IsNotExist(err) {
			return vocabulary.Default(), nil
		}
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	return vocab, nil
}

func addKind(path string, kind vocabulary.RelationshipKind) error {
	vocab, err := loadOrInit(path)
	if err != nil {
		return err
	}

	for _, existing := range vocab.Kinds {
		if existing.Name == kind.Name {
			return fmt.Errorf("kind %s already exists", kind.Name)
		}
	}

	vocab.Kinds = append(vocab.Kinds, kind)
	vocab.LastUpdated = time.Now().Format(time.RFC3339)

	return saveVocabulary(vocab, path)
}

func updateKind(path, name, field, value string) error {
	vocab, err := vocabulary.LoadVocabulary(path)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	found := false
	for i := range vocab.Kinds {
		if vocab.Kinds[i].Name == name {
			found = true
			switch field {
			case "description":
				vocab.Kinds[i].Description = value
			case "category":
				vocab.Kinds[i].Category = value
			case "aliases":
				vocab.Kinds[i].Aliases = splitAliases(value)
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}

	if !found {
		return fmt.Errorf("kind %s not found", name)
	}

	vocab.LastUpdated = time.Now().Format(time.RFC3339)
	return saveVocabulary(vocab, path)
}

func validateVocabulary(path string) error {
	vocab, err := vocabulary.LoadVocabulary(path)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	if len(vocab.Kinds) == 0 {
		return fmt.Errorf("vocabulary contains no kinds")
	}

	terms := make(map[string]string)
	for _, kind := range vocab.Kinds {
		if kind.Name == "" {
			return fmt.Errorf("kind missing required field: Name")
		}
		if kind.Category == "" {
			return fmt.Errorf("kind %s missing required field: Category", kind.Name)
		}

		if owner, taken := terms[normalize(kind.Name)]; taken {
			return fmt.Errorf("name %q collides with %s", kind.Name, owner)
		}
		terms[normalize(kind.Name)] = kind.Name

		for _, alias := range kind.Aliases {
			if owner, taken := terms[normalize(alias)]; taken {
				return fmt.Errorf("alias %q of %s collides with %s", alias, kind.Name, owner)
			}
			terms[normalize(alias)] = kind.Name
		}
	}

	fmt.Printf("Vocabulary validation passed. Found %d kinds.\n", len(vocab.Kinds))
	return nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(s, "_", " "))), " ")
}

// saveVocabulary handles saving the vocabulary to file
func saveVocabulary(vocab *vocabulary.Vocabulary, path string) error {
	data, err := json.MarshalIndent(vocab, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal vocabulary: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write vocabulary file: %w", err)
	}

	return nil
}

func help() {
	fmt.Print(`
Usage: vocab-updater <command> [flags]

Commands:
  add      Add a new relationship kind to the vocabulary
  update   Update an existing kind's field
  validate Validate the vocabulary file
  help     Show this help message

Examples:
  vocab-updater add -name amplifies -description "Strengthens the related phenomenon" -category causal -aliases "intensifies,magnifies"
  vocab-updater update -name amplifies -field aliases -value "intensifies,magnifies,escalates"
  vocab-updater validate -path configs/vocabulary.json

Use 'vocab-updater <command> -h' for more information about a command.

`)
}
