package mcpserver

// ModesContract describes how the editor tools behave in each mode. It is
// served as a resource so clients can plan tool calls.
const ModesContract = `# lotpad editor modes

The editor is always in exactly one mode. The label shown for each mode:

| Mode          | Label       | File name |
|---------------|-------------|-----------|
| clean-unsaved | _           | none      |
| dirty-unsaved | *           | none      |
| clean-saved   | <name>      | set       |
| dirty-saved   | <name> *    | set       |

Tool effects:

- edit_text: replaces the buffer. clean-unsaved -> dirty-unsaved,
  clean-saved -> dirty-saved; dirty modes stay.
- save: without a file name behaves like save_as (the name argument is
  required); with one, writes the buffer and ends in clean-saved.
- save_as: writes the buffer under a new name and ends in clean-saved.
  Names get a .txt extension unless they already have it. An empty name
  changes nothing.
- new_file: empty buffer, no file name, clean-unsaved.
- open_file: loads a stored file, clean-saved.
`
