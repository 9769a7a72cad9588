package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func (c *client) doOK(method, path string, body []byte) error {
	status, b, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return fmt.Errorf("status=%d body=%s", status, string(b))
	}
	c.print(status, b)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("TURNERO_URL", "http://localhost:8080")
		token   = envOr("TURNERO_TOKEN", "")
		out     = envOr("TURNERO_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "turneroctl",
		Short: "CLI para la API de turnero",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base de la API (env TURNERO_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "Access token Bearer (env TURNERO_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}
	refresh := func() {
		cl.BaseURL = baseURL
		cl.Token = token
		cl.OutFormat = out
	}

	// login: imprime el token para exportarlo como TURNERO_TOKEN
	loginCmd := &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Login de cuenta; imprime el access token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			body, _ := json.Marshal(map[string]string{"email": args[0], "password": args[1]})
			return cl.doOK("POST", "/api/auth/login", body)
		},
	}

	// grupo members
	membersCmd := &cobra.Command{
		Use:   "members",
		Short: "Gestión de miembros",
	}

	membersListCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los miembros activos",
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			return cl.doOK("GET", "/api/members", nil)
		},
	}

	var addGroup string
	membersAddCmd := &cobra.Command{
		Use:   "add <name> <email>",
		Short: "Registra un miembro",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			body, _ := json.Marshal(map[string]string{
				"name":  args[0],
				"email": args[1],
				"group": addGroup,
			})
			return cl.doOK("POST", "/api/members", body)
		},
	}
	membersAddCmd.Flags().StringVar(&addGroup, "group", "", "Grupo del miembro (obligatorio)")
	_ = membersAddCmd.MarkFlagRequired("group")

	membersRmCmd := &cobra.Command{
		Use:   "rm <member-id>",
		Short: "Desactiva un miembro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			return cl.doOK("DELETE", "/api/members/"+args[0], nil)
		},
	}

	membersCmd.AddCommand(membersListCmd, membersAddCmd, membersRmCmd)

	// generate: roles como name:count
	var genScope string
	generateCmd := &cobra.Command{
		Use:   "generate <role[:count]> [role[:count]...]",
		Short: "Genera una ronda de asignaciones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			type roleReq struct {
				Name  string `json:"name"`
				Count int    `json:"count"`
			}
			roles := make([]roleReq, 0, len(args))
			for _, a := range args {
				name, count := a, 1
				if i := strings.LastIndex(a, ":"); i > 0 {
					if n, err := strconv.Atoi(a[i+1:]); err == nil {
						name, count = a[:i], n
					}
				}
				roles = append(roles, roleReq{Name: name, Count: count})
			}
			body, _ := json.Marshal(map[string]any{"scope": genScope, "roles": roles})
			return cl.doOK("POST", "/api/rotation/generate", body)
		},
	}
	generateCmd.Flags().StringVar(&genScope, "scope", "ALL", `Grupo o "ALL"`)

	var histLimit, histOffset int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Muestra el historial de rondas",
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh()
			path := fmt.Sprintf("/api/history?limit=%d&offset=%d", histLimit, histOffset)
			return cl.doOK("GET", path, nil)
		},
	}
	historyCmd.Flags().IntVar(&histLimit, "limit", 20, "Cantidad de rondas")
	historyCmd.Flags().IntVar(&histOffset, "offset", 0, "Offset de paginación")

	root.AddCommand(loginCmd, membersCmd, generateCmd, historyCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
