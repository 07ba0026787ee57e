package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "user":
		handleUser(args)
	case "platform":
		handlePlatform(args)
	case "key":
		handleKey(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tgoo-auth auth <signup|login|logout|profile|change-password>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "signup":
		signup(args[1:])
	case "login":
		login(args[1:])
	case "logout":
		logout()
	case "profile":
		profile()
	case "change-password":
		changePassword(args[1:])
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleUser(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tgoo-auth user <list|create|update|reset-password>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listUsers(args[1:])
	case "create":
		createUser(args[1:])
	case "update":
		updateUser(args[1:])
	case "reset-password":
		resetPassword(args[1:])
	default:
		fmt.Printf("unknown user command: %s\n", subCmd)
	}
}

func handlePlatform(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tgoo-auth platform <list|all|create|update|set-master>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listPlatforms(args[1:])
	case "all":
		listAllPlatforms(args[1:])
	case "create":
		createPlatform(args[1:])
	case "update":
		updatePlatform(args[1:])
	case "set-master":
		setMasterPlatform(args[1:])
	default:
		fmt.Printf("unknown platform command: %s\n", subCmd)
	}
}

func handleKey(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tgoo-auth key <show|set|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "show":
		showAPIKey()
	case "set":
		setAPIKey(args[1:])
	case "delete":
		deleteAPIKey()
	default:
		fmt.Printf("unknown key command: %s\n", subCmd)
	}
}

// Auth commands
func signup(args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")
	fullName := fs.String("name", "", "full name (optional)")
	platform := fs.String("platform", "", "platform code")

	fs.Parse(args)

	if *email == "" || *password == "" || *platform == "" {
		fmt.Println("Error: email, password, and platform are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":    *email,
		"password": *password,
		"platform": *platform,
	}
	if *fullName != "" {
		payload["fullName"] = *fullName
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/signup", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Account created on %s, awaiting admin approval: %s\n", *platform, *email)
	} else {
		fmt.Printf("✗ Signup failed: %v\n", result)
	}
}

func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")
	platform := fs.String("platform", "", "platform code")

	fs.Parse(args)

	if *email == "" || *password == "" || *platform == "" {
		fmt.Println("Error: email, password, and platform are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":    *email,
		"password": *password,
		"platform": *platform,
	}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s (%s)\n", *email, *platform)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logout() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func profile() {
	result, status, err := getJSON("/auth/profile")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != 200 {
		fmt.Printf("✗ Request failed: %v\n", result)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "EMAIL\t%v\n", result["email"])
	fmt.Fprintf(w, "ROLE\t%v\n", result["role"])
	fmt.Fprintf(w, "STATUS\t%v\n", result["status"])
	fmt.Fprintf(w, "PLATFORM\t%v\n", platformCodeOf(result))
	w.Flush()
}

func changePassword(args []string) {
	fs := flag.NewFlagSet("change-password", flag.ExitOnError)
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")

	fs.Parse(args)

	if *current == "" || *next == "" {
		fmt.Println("Error: current and new are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"currentPassword": *current,
		"newPassword":     *next,
	}
	result, status, err := postJSON("/password/change", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Println("✓ Password changed")
	} else {
		fmt.Printf("✗ Change failed: %v\n", result)
	}
}

// User commands
func listUsers(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	platform := fs.String("platform", "", "filter by platform code (super admin only)")

	fs.Parse(args)

	path := "/admin/users"
	if *platform != "" {
		path += "?platform=" + *platform
	}

	req, _ := http.NewRequest("GET", getAPIURL()+path, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Request failed: %v\n", result)
		return
	}

	var users []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&users)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tROLE\tSTATUS\tPLATFORM")
	for _, u := range users {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
			u["id"], u["email"], u["role"], u["status"], platformCodeOf(u))
	}
	w.Flush()
}

func createUser(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")
	fullName := fs.String("name", "", "full name (optional)")
	role := fs.String("role", "USER", "role (USER, ADMIN, SUPER_ADMIN)")
	platform := fs.String("platform", "", "platform code (super admin only, defaults to own)")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":    *email,
		"password": *password,
		"role":     *role,
	}
	if *fullName != "" {
		payload["fullName"] = *fullName
	}
	if *platform != "" {
		payload["platformCode"] = *platform
	}

	result, status, err := postJSON("/admin/users", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 201 {
		fmt.Printf("✓ User created: %s (%s)\n", *email, *role)
	} else {
		fmt.Printf("✗ Create failed: %v\n", result)
	}
}

func updateUser(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.String("id", "", "user ID")
	role := fs.String("role", "", "new role (optional)")
	userStatus := fs.String("status", "", "new status (PENDING, ACTIVE, BLOCKED)")

	fs.Parse(args)

	if *id == "" {
		fmt.Println("Error: id is required")
		fs.PrintDefaults()
		return
	}
	if *role == "" && *userStatus == "" {
		fmt.Println("Error: at least one of role or status is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{}
	if *role != "" {
		payload["role"] = *role
	}
	if *userStatus != "" {
		payload["status"] = *userStatus
	}

	result, status, err := patchJSON("/admin/users/"+*id, payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Printf("✓ User updated: %s\n", *id)
	} else {
		fmt.Printf("✗ Update failed: %v\n", result)
	}
}

func resetPassword(args []string) {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	id := fs.String("id", "", "user ID")
	password := fs.String("password", "", "new password")

	fs.Parse(args)

	if *id == "" || *password == "" {
		fmt.Println("Error: id and password are required")
		fs.PrintDefaults()
		return
	}

	result, status, err := postJSON("/admin/users/"+*id+"/reset-password",
		map[string]string{"newPassword": *password})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Printf("✓ Password reset for user: %s\n", *id)
	} else {
		fmt.Printf("✗ Reset failed: %v\n", result)
	}
}

// Platform commands
func listPlatforms(args []string) {
	_ = args
	resp, err := http.Get(getAPIURL() + "/auth/platforms")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var platforms []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&platforms)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME")
	for _, p := range platforms {
		fmt.Fprintf(w, "%v\t%v\n", p["code"], p["name"])
	}
	w.Flush()
}

func listAllPlatforms(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/platforms", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Request failed: %v\n", result)
		return
	}

	var platforms []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&platforms)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tACTIVE\tMASTER\tUSERS")
	for _, p := range platforms {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\n",
			p["id"], p["code"], p["name"], p["isActive"], p["isMaster"], p["userCount"])
	}
	w.Flush()
}

func createPlatform(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	code := fs.String("code", "", "platform code")
	name := fs.String("name", "", "display name")
	domainFlag := fs.String("domain", "", "platform domain (optional)")
	description := fs.String("description", "", "description (optional)")

	fs.Parse(args)

	if *code == "" || *name == "" {
		fmt.Println("Error: code and name are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"code": *code, "name": *name}
	if *domainFlag != "" {
		payload["domain"] = *domainFlag
	}
	if *description != "" {
		payload["description"] = *description
	}

	result, status, err := postJSON("/admin/platforms", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 201 {
		fmt.Printf("✓ Platform created: %s\n", *code)
	} else {
		fmt.Printf("✗ Create failed: %v\n", result)
	}
}

func updatePlatform(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.String("id", "", "platform ID")
	name := fs.String("name", "", "new display name (optional)")
	domainFlag := fs.String("domain", "", "new domain (optional)")
	description := fs.String("description", "", "new description (optional)")
	active := fs.String("active", "", "true or false (optional)")

	fs.Parse(args)

	if *id == "" {
		fmt.Println("Error: id is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{}
	if *name != "" {
		payload["name"] = *name
	}
	if *domainFlag != "" {
		payload["domain"] = *domainFlag
	}
	if *description != "" {
		payload["description"] = *description
	}
	if *active != "" {
		payload["isActive"] = *active == "true"
	}
	if len(payload) == 0 {
		fmt.Println("Error: nothing to update")
		fs.PrintDefaults()
		return
	}

	result, status, err := patchJSON("/admin/platforms/"+*id, payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Printf("✓ Platform updated: %s\n", *id)
	} else {
		fmt.Printf("✗ Update failed: %v\n", result)
	}
}

func setMasterPlatform(args []string) {
	fs := flag.NewFlagSet("set-master", flag.ExitOnError)
	id := fs.String("id", "", "platform ID")

	fs.Parse(args)

	if *id == "" {
		fmt.Println("Error: id is required")
		fs.PrintDefaults()
		return
	}

	result, status, err := postJSON("/admin/platforms/"+*id+"/master", map[string]string{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Printf("✓ Master platform set: %s\n", *id)
	} else {
		fmt.Printf("✗ Request failed: %v\n", result)
	}
}

// API key commands
func showAPIKey() {
	result, status, err := getJSON("/api-key/gemini")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != 200 {
		fmt.Printf("✗ Request failed: %v\n", result)
		return
	}
	if has, ok := result["hasApiKey"].(bool); ok && has {
		fmt.Printf("✓ API key set: %v\n", result["apiKey"])
	} else {
		fmt.Println("No API key set")
	}
}

func setAPIKey(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	key := fs.String("key", "", "API key value")

	fs.Parse(args)

	if *key == "" {
		fmt.Println("Error: key is required")
		fs.PrintDefaults()
		return
	}

	result, status, err := postJSON("/api-key/gemini", map[string]string{"apiKey": *key})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Println("✓ API key saved")
	} else {
		fmt.Printf("✗ Save failed: %v\n", result)
	}
}

func deleteAPIKey() {
	req, _ := http.NewRequest("DELETE", getAPIURL()+"/api-key/gemini", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		fmt.Println("✓ API key removed")
	} else {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Delete failed: %v\n", result)
	}
}

// Helper functions
func getJSON(path string) (map[string]interface{}, int, error) {
	req, _ := http.NewRequest("GET", getAPIURL()+path, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode, nil
}

func postJSON(path string, payload interface{}) (map[string]interface{}, int, error) {
	return sendJSON("POST", path, payload)
}

func patchJSON(path string, payload interface{}) (map[string]interface{}, int, error) {
	return sendJSON("PATCH", path, payload)
}

func sendJSON(method, path string, payload interface{}) (map[string]interface{}, int, error) {
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest(method, getAPIURL()+path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode, nil
}

func platformCodeOf(record map[string]interface{}) string {
	if platform, ok := record["platform"].(map[string]interface{}); ok {
		if code, ok := platform["code"].(string); ok {
			return code
		}
	}
	return ""
}

func getAPIURL() string {
	if url := os.Getenv("TGOO_AUTH_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.tgoo-auth/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.tgoo-auth", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`TGOO Auth CLI

Usage:
  tgoo-auth <command> [options]

Commands:
  auth      Authentication (signup, login, logout, profile, change-password)
  user      User administration (list, create, update, reset-password) - admin access required
  platform  Platform administration (list, all, create, update, set-master)
  key       Gemini API key management (show, set, delete)
  help      Show this help message

Environment Variables:
  TGOO_AUTH_API    API endpoint (default: http://localhost:8080/api)

Examples:
  tgoo-auth auth signup -email user@example.com -password secret -platform dressme
  tgoo-auth auth login -email user@example.com -password secret -platform dressme
  tgoo-auth user list -platform dressme
  tgoo-auth platform set-master -id <platform-id>
`)
}
