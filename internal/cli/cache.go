package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear cached registry and repoquery answers",
	}
	cmd.AddCommand(newCacheClearCmd(), newCachePathCmd())
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.cfg.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.Clear(cmd.Context(), namespace)
			if err != nil {
				return err
			}
			if namespace != "" {
				fmt.Printf("removed %d entries from %q\n", count, namespace)
			} else {
				fmt.Printf("removed %d entries\n", count)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "only clear one namespace (crates, pypi, distro)")
	return cmd
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			switch a.cfg.Cache.Backend {
			case "", "file":
				dir := a.cfg.Cache.Dir
				if dir == "" {
					home, err := os.UserHomeDir()
					if err != nil {
						return err
					}
					dir = filepath.Join(home, ".cache", "pkgscout")
				}
				fmt.Println(dir)
			case "redis":
				fmt.Println("redis:", a.cfg.Redis.Addr)
			default:
				fmt.Println("backend:", a.cfg.Cache.Backend)
			}
			return nil
		},
	}
}
