package grw

import (
	"database/sql"
	"encoding/xml"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// GameDB is a local database of known game checksums, built from DAT
// files, used to attach canonical names to otherwise anonymous dumps.
type GameDB struct {
	db *sql.DB
}

// NewGameDB opens or creates a game database at the given path.
func NewGameDB(file string) (*GameDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS game (id INTEGER PRIMARY KEY NOT NULL, name STRING NOT NULL UNIQUE, region STRING)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS checksum (game_id INTEGER NOT NULL, crc TEXT NOT NULL UNIQUE, FOREIGN KEY(game_id) REFERENCES game(id))"); err != nil {
		return nil, err
	}

	return &GameDB{
		db: db,
	}, nil
}

// Close closes the underlying database.
func (db *GameDB) Close() error {
	return db.db.Close()
}

// DAT files are the XML game lists published by dump preservation
// projects; only the game names and per-ROM CRCs matter here.
type xmlDatafile struct {
	XMLName xml.Name  `xml:"datafile"`
	Games   []xmlGame `xml:"game"`
}

type xmlGame struct {
	XMLName xml.Name `xml:"game"`
	Name    string   `xml:"name,attr"`
	Region  string   `xml:"region"`
	ROMs    []xmlROM `xml:"rom"`
}

type xmlROM struct {
	XMLName xml.Name `xml:"rom"`
	Name    string   `xml:"name,attr"`
	CRC     string   `xml:"crc,attr"`
}

// ImportDAT replaces the database contents with the games listed in a DAT
// file.
func (db *GameDB) ImportDAT(file string) error {
	b, err := readJSON(file)
	if err != nil {
		return err
	}

	var dat xmlDatafile
	if err := xml.Unmarshal(b, &dat); err != nil {
		return err
	}

	if _, err = db.db.Exec("DELETE FROM checksum"); err != nil {
		return err
	}

	if _, err = db.db.Exec("DELETE FROM game"); err != nil {
		return err
	}

	for _, g := range dat.Games {
		var region sql.NullString
		if g.Region != "" {
			region.String = g.Region
			region.Valid = true
		}

		game, err := db.addGame(g.Name, region)
		if err != nil {
			return err
		}

		for _, r := range g.ROMs {
			if r.CRC == "" {
				continue
			}
			if err := db.addChecksum(game, fmt.Sprintf("%08s", strings.ToUpper(r.CRC))); err != nil {
				return err
			}
		}
	}

	return nil
}

func (db *GameDB) addGame(name string, region sql.NullString) (int64, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM game WHERE name = ?", name).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO game (name, region) VALUES (?, ?)", name, region)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

func (db *GameDB) addChecksum(game int64, crc string) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO checksum (game_id, crc) VALUES (?, ?)", game, crc); err != nil {
		return err
	}
	return nil
}

// FindGameByCRC returns the canonical name and region recorded for a
// content CRC, or empty strings when the dump is unknown.
func (db *GameDB) FindGameByCRC(crc string) (string, string, error) {
	var name string
	var region sql.NullString
	switch err := db.db.QueryRow("SELECT g.name, g.region FROM checksum AS c JOIN game AS g ON c.game_id = g.id WHERE c.crc = ?", crc).Scan(&name, &region); err {
	case sql.ErrNoRows:
		return "", "", nil
	case nil:
		return name, region.String, nil
	default:
		return "", "", err
	}
}
