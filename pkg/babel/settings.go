package babel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings persists device command templates.
type Settings interface {
	// DeviceNames returns the stored device list, or nil if none has ever
	// been saved.
	DeviceNames() ([]string, error)

	// Load returns the stored templates of the named device.
	Load(name string) (DeviceCommands, error)

	// SaveAll replaces every stored device. order is the device list.
	SaveAll(devices map[string]DeviceCommands, order []string) error
}

// LoadDeviceSet reads every device from s. When no device list is stored
// the built-in devices are returned instead.
func LoadDeviceSet(s Settings) (*DeviceSet, error) {
	names, err := s.DeviceNames()
	if err != nil {
		return nil, fmt.Errorf("load device list: %w", err)
	}
	if names == nil {
		return NewDeviceSet(BuiltinDevices()...), nil
	}

	set := NewDeviceSet()
	for _, name := range names {
		cmds, err := s.Load(name)
		if err != nil {
			return nil, fmt.Errorf("load device %q: %w", name, err)
		}
		set.devices[name] = NewDeviceFormat(name, cmds)
	}
	return set, nil
}

// SaveDeviceSet writes every device in set to s, replacing what was stored.
func SaveDeviceSet(s Settings, set *DeviceSet) error {
	names, cmds := set.Snapshot()
	return s.SaveAll(cmds, names)
}

// settingsFile is the on-disk layout of a YAMLSettings file.
type settingsFile struct {
	DeviceList []string                  `yaml:"devicelist"`
	Devices    map[string]DeviceCommands `yaml:"devices"`
}

// YAMLSettings stores devices in a YAML file:
//
//	devicelist:
//	    - Garmin serial
//	devices:
//	    Garmin serial:
//	        wptdownload: '%babel -w -i garmin -o gpx %in %out'
//	        ...
//
// A missing file holds no device list.
type YAMLSettings struct {
	Path string
}

// DeviceNames implements Settings.
func (s YAMLSettings) DeviceNames() ([]string, error) {
	f, ok, err := s.read()
	if err != nil || !ok {
		return nil, err
	}
	if f.DeviceList == nil {
		return []string{}, nil
	}
	return f.DeviceList, nil
}

// Load implements Settings.
func (s YAMLSettings) Load(name string) (DeviceCommands, error) {
	f, _, err := s.read()
	if err != nil {
		return DeviceCommands{}, err
	}
	cmds, ok := f.Devices[name]
	if !ok {
		return DeviceCommands{}, fmt.Errorf("%q: %w", name, ErrDeviceNotFound)
	}
	return cmds, nil
}

// SaveAll implements Settings. The file is replaced atomically.
func (s YAMLSettings) SaveAll(devices map[string]DeviceCommands, order []string) error {
	f := settingsFile{
		DeviceList: order,
		Devices:    devices,
	}
	if f.DeviceList == nil {
		f.DeviceList = []string{}
	}
	b, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshal devices: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.Path)
}

func (s YAMLSettings) read() (settingsFile, bool, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return settingsFile{}, false, nil
	}
	if err != nil {
		return settingsFile{}, false, err
	}
	var f settingsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return settingsFile{}, false, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return f, true, nil
}
