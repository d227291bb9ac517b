package cmd

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/Aftnet/NetMediaInfoLib/internal/container"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Print the tags stored in a video file",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowCommand,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShowCommand(cmd *cobra.Command, args []string) error {
	path := args[0]
	file, err := newOpenerFunc(appConfig).Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	props := file.Properties()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%dx%d)\n", path, props.VideoWidth, props.VideoHeight)

	rows := tagRows(file)
	if len(rows) == 0 {
		fmt.Fprintln(out, "No tags")
		return nil
	}
	fmt.Fprintln(out, renderTable([]string{"Key", "Value"}, rows, nil))
	return nil
}

// tagRows lists every tag of the file as key/value rows.
func tagRows(file container.File) [][]string {
	var rows [][]string
	if tag := file.AppleTag(false); tag != nil {
		for _, key := range tag.Keys() {
			atom, _ := tag.Atom(key)
			rows = append(rows, []string{key.String(), atomValue(atom)})
		}
		for i, pic := range tag.Pictures() {
			rows = append(rows, []string{fmt.Sprintf("covr[%d]", i), fmt.Sprintf("%d bytes", len(pic))})
		}
	}
	if tag := file.MatroskaTag(false); tag != nil {
		for _, s := range tag.SimpleTags() {
			rows = append(rows, []string{s.Name, s.Value})
		}
		if cover := tag.Cover(); cover != nil {
			rows = append(rows, []string{"cover", fmt.Sprintf("%d bytes", len(cover))})
		}
	}
	return rows
}

func atomValue(a container.Atom) string {
	if a.Text != nil {
		return strings.Join(a.Text, "; ")
	}
	switch len(a.Data) {
	case 1:
		return strconv.Itoa(int(a.Data[0]))
	case 2:
		return strconv.Itoa(int(int16(binary.BigEndian.Uint16(a.Data))))
	case 4:
		return strconv.Itoa(int(int32(binary.BigEndian.Uint32(a.Data))))
	case 8:
		return strconv.FormatInt(int64(binary.BigEndian.Uint64(a.Data)), 10)
	default:
		return fmt.Sprintf("%d bytes", len(a.Data))
	}
}
