package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"totemic/crypto"
	"totemic/native/boost"
)

const defaultEndpoint = "http://127.0.0.1:8645"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	var err error
	switch os.Args[1] {
	case "keygen":
		err = runKeygen(os.Args[2:])
	case "sign-voucher":
		err = runSignVoucher(os.Args[2:])
	case "call":
		err = runCall(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: totem-cli <command> [flags]

commands:
  keygen                    generate a key pair and print the address
  sign-voucher              sign a free-boost voucher
  call                      invoke a JSON-RPC method`)
}

func runKeygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	fmt.Printf("private: %s\n", hex.EncodeToString(key.Bytes()))
	fmt.Printf("address: %s\n", key.PubKey().Address().String())
	return nil
}

func runSignVoucher(args []string) error {
	fs := flag.NewFlagSet("sign-voucher", flag.ExitOnError)
	keyHex := fs.String("key", "", "Signer private key, hex encoded")
	userStr := fs.String("user", "", "Boosting user address")
	totemStr := fs.String("totem", "", "Totem address")
	timestamp := fs.Int64("timestamp", 0, "Voucher timestamp (unix seconds, defaults to now)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *keyHex == "" || *userStr == "" || *totemStr == "" {
		return fmt.Errorf("key, user and totem are required")
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(*keyHex, "0x"))
	if err != nil {
		return fmt.Errorf("decode key: %w", err)
	}
	key, err := crypto.PrivateKeyFromBytes(raw)
	if err != nil {
		return err
	}
	user, err := crypto.DecodeAddress(*userStr)
	if err != nil {
		return fmt.Errorf("user: %w", err)
	}
	totem, err := crypto.DecodeAddress(*totemStr)
	if err != nil {
		return fmt.Errorf("totem: %w", err)
	}
	ts := *timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}
	digest := boost.VoucherDigest(user.Array(), totem.Array(), ts)
	sig, err := key.Sign(digest[:])
	if err != nil {
		return err
	}
	fmt.Printf("timestamp: %d\n", ts)
	fmt.Printf("signature: 0x%s\n", hex.EncodeToString(sig))
	return nil
}

func runCall(args []string) error {
	fs := flag.NewFlagSet("call", flag.ExitOnError)
	endpoint := fs.String("endpoint", defaultEndpoint, "RPC endpoint")
	method := fs.String("method", "", "JSON-RPC method name")
	paramsJSON := fs.String("params", "{}", "Params object, JSON encoded")
	token := fs.String("token", os.Getenv("TOTEMIC_RPC_TOKEN"), "Bearer token for authenticated methods")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *method == "" {
		return fmt.Errorf("method is required")
	}
	var params json.RawMessage
	if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	payload, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  *method,
		"params":  []json.RawMessage{params},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, *endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
