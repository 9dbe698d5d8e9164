package config

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetDataFolder() string {
	return GetEnv("DATA_FOLDER", "./data")
}

// GetStorageSecret returns the secret the session namespace is encrypted with. Empty stores it in plain JSON.
func (Storage) GetStorageSecret() string {
	return GetEnv("STORAGE_SECRET", "")
}
