package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/omnote/omnote/internal/config"
	"github.com/omnote/omnote/internal/logging"
	"github.com/omnote/omnote/internal/session"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the persisted session",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted session document",
	RunE: func(_ *cobra.Command, _ []string) error {
		path, err := config.GetSessionFile()
		if err != nil {
			return err
		}
		store := session.NewStore(path, logging.NewFromEnv())
		doc, err := store.Read()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var statePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the session file path",
	RunE: func(_ *cobra.Command, _ []string) error {
		path, err := config.GetSessionFile()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var stateSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the session document",
	RunE: func(_ *cobra.Command, _ []string) error {
		reflector := jsonschema.Reflector{DoNotReference: true}
		schema := reflector.Reflect(&session.Document{})
		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(statePathCmd)
	stateCmd.AddCommand(stateSchemaCmd)
}
