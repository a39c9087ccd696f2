package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrMissingURL     = errors.New("sound without url")
	ErrMissingSoundID = errors.New("category sound without id")
)

type (
	// Entry is a top-level child of the sound list: *Sound, *Categories or
	// *Hotbar.
	Entry interface{ isEntry() }

	// CategoryItem is a child of a category: *Category or *CategorySound.
	CategoryItem interface{ isCategoryItem() }
)

// SoundList is the document root.
type SoundList struct {
	Entries []Entry
}

// Sound is a library entry.
type Sound struct {
	Index        int    `xml:"index,attr,omitempty" json:"index,omitempty" yaml:"index,omitempty"`
	URL          string `xml:"url,attr" json:"url" yaml:"url"`
	Artist       string `xml:"artist,attr,omitempty" json:"artist,omitempty" yaml:"artist,omitempty"`
	Title        string `xml:"title,attr,omitempty" json:"title,omitempty" yaml:"title,omitempty"`
	Duration     string `xml:"duration,attr,omitempty" json:"duration,omitempty" yaml:"duration,omitempty"`
	AddedOn      string `xml:"addedOn,attr,omitempty" json:"added_on,omitempty" yaml:"added_on,omitempty"`
	LastPlayedOn string `xml:"lastPlayedOn,attr,omitempty" json:"last_played_on,omitempty" yaml:"last_played_on,omitempty"`
	PlayCount    int    `xml:"playCount,attr,omitempty" json:"play_count,omitempty" yaml:"play_count,omitempty"`
}

// Categories groups the top-level categories.
type Categories struct {
	Categories []*Category
}

// Category is a named folder of sounds and sub categories.
type Category struct {
	Type   string
	Hidden bool
	Name   string
	// Icon is usually a data URI. Empty means no icon.
	Icon         string
	Index        int
	KeyModifiers int
	Key          int
	Items        []CategoryItem
}

// CategorySound refers to a Sound by its index.
type CategorySound struct {
	ID int
}

// Hotbar is kept for document order only; its content is not modelled.
type Hotbar struct{}

func (*Sound) isEntry()      {}
func (*Categories) isEntry() {}
func (*Hotbar) isEntry()     {}

func (*Category) isCategoryItem()      {}
func (*CategorySound) isCategoryItem() {}

func (l *SoundList) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var e Entry
			switch t.Name.Local {
			case "Sound":
				s := new(Sound)
				if err := d.DecodeElement(s, &t); err != nil {
					return err
				}
				if s.URL == "" {
					return ErrMissingURL
				}
				e = s
			case "Categories":
				c := new(Categories)
				if err := d.DecodeElement(c, &t); err != nil {
					return err
				}
				e = c
			case "Hotbar":
				if err := d.Skip(); err != nil {
					return err
				}
				e = &Hotbar{}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			l.Entries = append(l.Entries, e)
		case xml.EndElement:
			return nil
		}
	}
}

func (c *Categories) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "Category" {
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			cat := new(Category)
			if err := d.DecodeElement(cat, &t); err != nil {
				return err
			}
			c.Categories = append(c.Categories, cat)
		case xml.EndElement:
			return nil
		}
	}
}

func (c *Category) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		var err error
		switch a.Name.Local {
		case "type":
			c.Type = a.Value
		case "name":
			c.Name = a.Value
		case "icon":
			c.Icon = a.Value
		case "hidden":
			c.Hidden, err = strconv.ParseBool(a.Value)
		case "index":
			c.Index, err = strconv.Atoi(a.Value)
		case "keyModifiers":
			c.KeyModifiers, err = strconv.Atoi(a.Value)
		case "key":
			c.Key, err = strconv.Atoi(a.Value)
		}
		if err != nil {
			return fmt.Errorf("category %q: attribute %s: %w", c.Name, a.Name.Local, err)
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Category":
				sub := new(Category)
				if err := d.DecodeElement(sub, &t); err != nil {
					return err
				}
				c.Items = append(c.Items, sub)
			case "Sound":
				s := new(CategorySound)
				if err := d.DecodeElement(s, &t); err != nil {
					return err
				}
				c.Items = append(c.Items, s)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (s *CategorySound) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	found := false
	for _, a := range start.Attr {
		if a.Name.Local != "id" {
			continue
		}
		id, err := strconv.Atoi(a.Value)
		if err != nil {
			return fmt.Errorf("category sound id: %w", err)
		}
		s.ID = id
		found = true
	}
	if !found {
		return ErrMissingSoundID
	}
	return d.Skip()
}
