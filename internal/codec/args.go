package codec

// Command group and name of the SBAS corrections command in the device tool.
const (
	ToolGroup   = "cmd"
	ToolCommand = "sbas-corrections"
)

// Args renders the canonical argument vector for r against target.
// An empty target omits --port, leaving port selection to the tool.
func (r *Request) Args(target string) []string {
	args := []string{ToolGroup, ToolCommand, string(r.Verb)}
	if r.Config != nil {
		args = appendField(args, FieldSatellite, r.Config.Satellite.String(), r.ShortFlags)
		args = appendField(args, FieldSisMode, r.Config.SisMode.String(), r.ShortFlags)
		args = appendField(args, FieldNavMode, r.Config.NavMode.String(), r.ShortFlags)
		args = appendField(args, FieldDo229Version, r.Config.Do229Version.String(), r.ShortFlags)
	}
	if r.Payload != nil {
		args = append(args, "--payload", FormatPayload(r.Payload))
	}
	return appendPort(args, target)
}

// RawArgs renders in verbatim, without validation or case folding.
// It is how inputs the codec rejects still reach the device tool, which
// performs its own validation.
func RawArgs(in Input, target string) []string {
	args := []string{ToolGroup, ToolCommand, string(in.Verb)}
	for _, f := range Fields {
		if v := in.value(f); v != "" {
			args = appendField(args, f, v, in.ShortFlags)
		}
	}
	if in.Payload != "" {
		args = append(args, "--payload", in.Payload)
	}
	return appendPort(args, target)
}

func appendField(args []string, f FieldName, value string, short bool) []string {
	if s := ShortFlag(f); short && s != "" {
		return append(args, "-"+s, value)
	}
	return append(args, "--"+string(f), value)
}

func appendPort(args []string, target string) []string {
	if target == "" {
		return args
	}
	return append(args, "--port", target)
}
