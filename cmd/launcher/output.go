package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rovshanmuradov/token-launcher/internal/types"
	"github.com/rovshanmuradov/token-launcher/internal/ui/style"
	"github.com/rovshanmuradov/token-launcher/internal/workflow"
	"github.com/urfave/cli/v2"
)

type outcomeView struct {
	WorkflowID  string `json:"workflow_id"`
	Operation   string `json:"operation"`
	Network     string `json:"network"`
	State       string `json:"state"`
	Signature   string `json:"signature,omitempty"`
	Slot        uint64 `json:"slot,omitempty"`
	Mint        string `json:"mint,omitempty"`
	MetadataURI string `json:"metadata_uri,omitempty"`
	ImageURI    string `json:"image_uri,omitempty"`
	RawSupply   uint64 `json:"raw_supply,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Message     string `json:"message,omitempty"`
}

func viewOf(out *workflow.Outcome) outcomeView {
	v := outcomeView{
		WorkflowID:  out.WorkflowID,
		Operation:   out.Operation,
		Network:     out.Network,
		State:       string(out.State),
		Slot:        out.Slot,
		MetadataURI: out.MetadataURI,
		ImageURI:    out.ImageURI,
		RawSupply:   out.RawSupply,
	}
	if out.Submitted() {
		v.Signature = out.Signature.String()
	}
	if !out.Mint.IsZero() {
		v.Mint = out.Mint.String()
	}
	if out.Err != nil {
		v.ErrorKind = out.Kind().String()
		v.Message = types.UserMessage(out.Err)
	}
	return v
}

func printOutcome(c *cli.Context, out *workflow.Outcome) {
	v := viewOf(out)
	if c.Bool("json") {
		printJSON(v)
		return
	}

	s := style.DefaultStyles()
	title := s.Title.Render(fmt.Sprintf("%s %s", v.Operation, v.State))
	rows := []struct{ label, value string }{
		{"Network", v.Network},
		{"Workflow", v.WorkflowID},
		{"Signature", v.Signature},
		{"Mint", v.Mint},
		{"Metadata", v.MetadataURI},
		{"Image", v.ImageURI},
	}
	if v.RawSupply > 0 {
		rows = append(rows, struct{ label, value string }{"Raw supply", fmt.Sprint(v.RawSupply)})
	}
	if v.Message != "" {
		rows = append(rows, struct{ label, value string }{"Result", v.Message})
	}

	body := title + "\n"
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		body += s.Label.Render(r.label) + s.Value.Render(r.value) + "\n"
	}
	fmt.Fprintln(os.Stdout, s.Box.Render(body))
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to encode output:", err)
		return
	}
	fmt.Fprintln(os.Stdout, string(data))
}
